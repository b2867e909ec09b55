package dto

// ── 训练块模块 DTO ──

// CreateBlockRequest 创建训练块请求
type CreateBlockRequest struct {
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Tags        string `json:"tags"        binding:"max=500"` // 逗号分隔
}

// UpdateBlockRequest 更新训练块请求（整体替换）
type UpdateBlockRequest struct {
	Title       string `json:"title"        binding:"required,max=200"`
	Description string `json:"description"  binding:"max=5000"`
	Tags        string `json:"tags"         binding:"max=500"`
	IsFavorited bool   `json:"is_favorited"`
}

// BlockResponse 训练块信息响应
type BlockResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	IsFavorited bool   `json:"is_favorited"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
