package health

import (
	"context"
	"time"

	"github.com/SlpAus/stat-trainer-bot/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// MonitorInterval 是后台健康检查的默认间隔
	MonitorInterval = 30 * time.Second
	pingTimeout     = 2 * time.Second
)

// Report 是一次健康检查的结果
type Report struct {
	State      State             `json:"-"`
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

// Checker 检查数据库和（可选的）Redis是否可用
type Checker struct {
	db     *gorm.DB
	rdb    *redis.Client
	log    *zap.Logger
	status statusManager
}

// NewChecker 创建健康检查器，rdb 为nil时跳过Redis检查
func NewChecker(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Checker {
	return &Checker{db: db, rdb: rdb, log: log.Named("health")}
}

// Check 执行一次完整的健康检查
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	r := Report{
		State:      StateHealthy,
		Components: make(map[string]string),
		CheckedAt:  time.Now(),
	}

	if err := c.pingDB(ctx); err != nil {
		r.State = StateDegraded
		r.Components["database"] = err.Error()
	} else {
		r.Components["database"] = "ok"
	}

	if c.rdb != nil {
		if err := c.rdb.Ping(ctx).Err(); err != nil {
			r.State = StateDegraded
			r.Components["redis"] = err.Error()
		} else {
			r.Components["redis"] = "ok"
		}
	}

	r.Status = r.State.String()
	if c.status.update(r) {
		if r.State == StateHealthy {
			c.log.Info("健康检查: 系统状态 -> [健康]", zap.Any("components", r.Components))
		} else {
			c.log.Warn("健康检查: 系统状态 -> [降级]", zap.Any("components", r.Components))
		}
	}
	return r
}

func (c *Checker) pingDB(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Last 返回最近一次检查的结果
func (c *Checker) Last() Report {
	return c.status.snapshot()
}

// Monitor 周期性执行健康检查，直到收到停机信号
func (c *Checker) Monitor(h *lifecycle.Handle, interval time.Duration) {
	c.log.Info("健康检查器已启动", zap.Duration("interval", interval))
	for {
		c.Check(h.Ctx())
		if err := h.Sleep(interval); err != nil {
			c.log.Info("健康检查器正在关闭")
			return
		}
	}
}
