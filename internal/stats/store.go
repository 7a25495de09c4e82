package stats

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 封装了对 users 表的全部读写。
// 数据库句柄在启动时注入，每个命令处理器共享同一个 Store。
type Store struct {
	db *gorm.DB
}

// NewStore 创建一个新的 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 负责自动迁移 users 表结构
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("无法迁移users表: %w", err)
	}
	return nil
}

// ensureRecord 在记录不存在时插入一条默认记录，已存在时什么都不做
func ensureRecord(tx *gorm.DB, userID string) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&Record{UserID: userID, HasAction: true}).Error
	if err != nil {
		return fmt.Errorf("无法为用户 %s 创建记录: %w", userID, err)
	}
	return nil
}

// Get 查询一个用户的记录，不存在时返回 ErrNoRecord
func (s *Store) Get(ctx context.Context, userID string) (Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNoRecord
		}
		return Record{}, fmt.Errorf("无法查询用户 %s: %w", userID, err)
	}
	return rec, nil
}

// EnsureEligible 是训练流程的第一阶段：懒创建记录，并检查本回合是否还能行动。
// 它不修改任何属性，真正的扣减在 Train 中原子完成。
func (s *Store) EnsureEligible(ctx context.Context, userID string) (Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecord(tx, userID); err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&rec).Error
	})
	if err != nil {
		return Record{}, err
	}
	if !rec.HasAction {
		return rec, ErrActionUnavailable
	}
	return rec, nil
}

// Train 为用户的某个属性加一并消耗本回合的行动。
// 检查与设置合并为一条带条件的UPDATE，并发调用时最多只有一次成功。
func (s *Store) Train(ctx context.Context, userID string, stat Stat) (Record, error) {
	column, err := stat.column()
	if err != nil {
		return Record{}, err
	}

	var rec Record
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRecord(tx, userID); err != nil {
			return err
		}

		result := tx.Model(&Record{}).
			Where("user_id = ? AND has_action = ?", userID, true).
			Updates(map[string]interface{}{
				column:       gorm.Expr("? + ?", clause.Column{Name: column}, 1),
				"has_action": false,
			})
		if result.Error != nil {
			return fmt.Errorf("无法训练用户 %s 的 %s: %w", userID, stat, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrActionUnavailable
		}

		return tx.Where("user_id = ?", userID).First(&rec).Error
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SetStat 把用户的某个属性直接设置为给定值，不触碰 has_action 和其他属性。
// 数值不做范围限制；用户没有记录时返回 ErrNoRecord。
func (s *Store) SetStat(ctx context.Context, userID string, stat Stat, value int) (Record, error) {
	column, err := stat.column()
	if err != nil {
		return Record{}, err
	}

	var rec Record
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Record{}).Where("user_id = ?", userID).Update(column, value)
		if result.Error != nil {
			return fmt.Errorf("无法设置用户 %s 的 %s: %w", userID, stat, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNoRecord
		}
		return tx.Where("user_id = ?", userID).First(&rec).Error
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ResetActions 把所有记录的 has_action 无条件设为true，返回受影响的行数。
// 它接收一个事务句柄，以便回合控制器把它和回合计数放在同一个事务里。
func ResetActions(tx *gorm.DB) (int64, error) {
	result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&Record{}).
		Update("has_action", true)
	if result.Error != nil {
		return 0, fmt.Errorf("无法重置用户行动: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Count 返回已有记录的用户数
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("无法统计用户数: %w", err)
	}
	return n, nil
}
