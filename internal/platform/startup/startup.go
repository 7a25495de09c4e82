package startup

import (
	"context"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/metadata"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InitializeApplication 是应用启动时执行的总入口，负责建表。
// 任何一步失败都会返回错误，调用方应当终止进程。
func InitializeApplication(db *gorm.DB, store *stats.Store, log *zap.Logger) error {
	log.Info("开始应用初始化...")

	if err := metadata.Migrate(db); err != nil {
		return err
	}
	if err := store.Migrate(); err != nil {
		return err
	}

	n, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	log.Info("应用初始化完成！", zap.Int64("users", n))
	return nil
}
