package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

// OpenRedis 初始化与Redis的连接。
// Redis未启用时返回 (nil, nil)，调用方据此回退到进程内实现。
func OpenRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Info("Redis未启用，菜单会话将保存在内存中")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	log.Info("Redis 连接成功！", zap.String("address", cfg.Address))
	return rdb, nil
}
