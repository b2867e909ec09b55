package dto

// ── 复制模块 DTO ──
// 模板载荷只携带训练块内容，不携带任何 id，可直接由资源详情中的 copyable_* 字段提交

// CopyBlockRequest 复制单个训练块
type CopyBlockRequest struct {
	Title       string `json:"title"       yaml:"title"       binding:"required,max=200"`
	Description string `json:"description" yaml:"description" binding:"max=5000"`
	Tags        string `json:"tags"        yaml:"tags"        binding:"max=500"`
}

// CopyPlanRequest 深度复制训练计划
type CopyPlanRequest struct {
	Title string          `json:"title" binding:"required,max=200"`
	Tags  string          `json:"tags"  binding:"max=500"`
	Weeks []CopyWeekInput `json:"weeks"`
}

// CopyWeekInput 模板周
type CopyWeekInput struct {
	WeekNumber int                       `json:"week_number"`
	Days       Days[CopyAssignmentInput] `json:"days"`
}

// CopyAssignmentInput 模板排期；按 title 去重映射到新建的训练块
type CopyAssignmentInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	TimeSlot    string `json:"time_slot"`
}

// CopyPlanResponse 复制结果：新计划 id 与本次新建的全部训练块
type CopyPlanResponse struct {
	PlanID string          `json:"plan_id"`
	Blocks []BlockResponse `json:"blocks"`
}
