package metadata

import "gorm.io/gorm"

// Metadata 定义了存储系统元数据的键值对表结构
type Metadata struct {
	gorm.Model

	// Key 是元数据的唯一键，例如 "current_round"
	Key string `gorm:"uniqueIndex;not null;type:varchar(255)"`

	Value string `gorm:"type:varchar(255)"`
}

// 元数据表中使用的键
const (
	// CurrentRoundKey 存储当前回合编号，从1开始，每次重置加一
	CurrentRoundKey = "current_round"

	// LastResetAtKey 存储上一次回合重置的时间 (RFC3339)
	LastResetAtKey = "last_reset_at"

	// LastResetByKey 存储上一次执行回合重置的管理员ID
	LastResetByKey = "last_reset_by"
)
