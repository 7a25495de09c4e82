package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix 是菜单实例在Redis中的键名前缀
// Key: menu:train:<nonce>
// Value: Session 的JSON序列化字符串
const keyPrefix = "menu:train:"

// RedisStore 把菜单实例保存在Redis中，依赖键的TTL实现过期
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore 创建一个基于Redis的菜单存储
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Issue(ctx context.Context, s Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("无法序列化菜单实例: %w", err)
	}
	// NX 防止同一个nonce被覆盖
	ok, err := r.rdb.SetNX(ctx, keyPrefix+s.Nonce, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("无法写入菜单实例: %w", err)
	}
	if !ok {
		return fmt.Errorf("菜单实例 %s 已存在", s.Nonce)
	}
	return nil
}

func (r *RedisStore) Consume(ctx context.Context, nonce string) (Session, error) {
	// GETDEL 保证取出和删除是一个原子操作
	data, err := r.rdb.GetDel(ctx, keyPrefix+nonce).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrExpired
		}
		return Session{}, fmt.Errorf("无法读取菜单实例: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("无法解析菜单实例: %w", err)
	}
	return s, nil
}
