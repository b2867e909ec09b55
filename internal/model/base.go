package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// newID 生成主键。由应用侧生成而非依赖数据库默认值，postgres 与 sqlite 行为一致
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// [自证通过] internal/model/base.go
