package round

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/metadata"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Info 描述当前回合的状态
type Info struct {
	Round       int64     `json:"round"`
	LastResetAt time.Time `json:"lastResetAt,omitempty"`
}

// ResetResult 描述一次回合重置的结果
type ResetResult struct {
	Round int64
	// Users 是被恢复行动的记录数
	Users int64
}

// Controller 负责回合的推进：批量恢复所有用户的行动，并维护回合计数
type Controller struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewController 创建一个回合控制器
func NewController(db *gorm.DB, log *zap.Logger) *Controller {
	return &Controller{db: db, log: log, now: time.Now}
}

// Reset 开始新的回合。所有记录的 has_action 无条件恢复为true，
// 回合编号加一，三者在同一个事务中完成。
func (c *Controller) Reset(ctx context.Context, by string) (ResetResult, error) {
	var result ResetResult
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := stats.ResetActions(tx)
		if err != nil {
			return err
		}

		// 递增在一条UPDATE里完成，并发重置不会丢失回合
		next, err := metadata.IncrementCurrentRound(tx)
		if err != nil {
			return fmt.Errorf("无法推进回合编号: %w", err)
		}
		if err := metadata.SetLastReset(tx, c.now(), by); err != nil {
			return fmt.Errorf("无法记录重置时间: %w", err)
		}

		result = ResetResult{Round: next, Users: n}
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}

	c.log.Info("回合已重置",
		zap.Int64("round", result.Round),
		zap.Int64("users", result.Users),
		zap.String("by", by),
	)
	return result, nil
}

// Current 返回当前回合编号和上次重置时间
func (c *Controller) Current(ctx context.Context) (Info, error) {
	db := c.db.WithContext(ctx)
	r, err := metadata.GetCurrentRound(db)
	if err != nil {
		return Info{}, err
	}
	at, err := metadata.GetLastResetAt(db)
	if err != nil {
		return Info{}, err
	}
	return Info{Round: r, LastResetAt: at}, nil
}
