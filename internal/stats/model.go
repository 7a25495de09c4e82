package stats

import "time"

// Record 定义了用户属性在数据库中的持久化模型。
// 记录在用户第一次训练时懒创建，之后永不删除。
type Record struct {
	// UserID 是Discord分配的用户标识，作为主键
	UserID string `gorm:"primaryKey;column:user_id;type:varchar(32)" json:"userId"`

	Attack  int `gorm:"not null;default:0" json:"attack"`
	Speed   int `gorm:"not null;default:0" json:"speed"`
	Defense int `gorm:"not null;default:0" json:"defense"`

	// HasAction 为false当且仅当用户在上次回合重置之后已经训练过
	HasAction bool `gorm:"not null;default:true" json:"hasAction"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 固定表名为 users
func (Record) TableName() string {
	return "users"
}

// Value 返回记录中某个属性的当前值
func (r Record) Value(s Stat) int {
	switch s {
	case Attack:
		return r.Attack
	case Speed:
		return r.Speed
	case Defense:
		return r.Defense
	}
	return 0
}
