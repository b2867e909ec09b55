package dto

// ── 资源模块 DTO ──

// ResourceSummaryResponse 资源列表项
type ResourceSummaryResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	CreatedAt   string `json:"created_at"`
}

// ResourceDetailResponse 资源详情
// copyable_* 仅在调用方已登录时返回
type ResourceDetailResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Content        string               `json:"content"`
	ContentHTML    string               `json:"content_html"`
	Tags           string               `json:"tags"`
	CreatedAt      string               `json:"created_at"`
	Blocks         []BlockResponse      `json:"blocks"`
	Plans          []PlanDetailResponse `json:"plans"`
	CopyableBlocks []CopyBlockRequest   `json:"copyable_blocks,omitempty"`
	CopyablePlans  []CopyPlanRequest    `json:"copyable_plans,omitempty"`
}

// ── 资源发布种子文件（resourcectl create -f） ──

// ResourceSeed 资源种子
type ResourceSeed struct {
	Title       string             `yaml:"title"       json:"title"`
	Description string             `yaml:"description" json:"description"`
	Content     string             `yaml:"content"     json:"content"`
	Tags        string             `yaml:"tags"        json:"tags"`
	Blocks      []CopyBlockRequest `yaml:"blocks"      json:"blocks"`
	Plans       []SeedPlan         `yaml:"plans"       json:"plans"`
}

// SeedPlan 种子中的模板计划
type SeedPlan struct {
	Title string     `yaml:"title" json:"title"`
	Tags  string     `yaml:"tags"  json:"tags"`
	Weeks []SeedWeek `yaml:"weeks" json:"weeks"`
}

// SeedWeek 种子中的模板周；days 键为星期 1..7
type SeedWeek struct {
	WeekNumber int                      `yaml:"week_number" json:"week_number"`
	Days       map[int][]SeedAssignment `yaml:"days"        json:"days"`
}

// SeedAssignment 种子中的排期，按标题引用同一种子里的训练块
type SeedAssignment struct {
	Block    string `yaml:"block"     json:"block"`
	TimeSlot string `yaml:"time_slot" json:"time_slot"`
}
