package menu

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrExpired 表示菜单实例不存在：已过期、已被使用，或者从未签发
	ErrExpired = errors.New("menu expired or already used")
	// ErrForeign 表示与菜单交互的不是当初发起命令的用户
	ErrForeign = errors.New("menu belongs to another user")
)

// Session 是一次已签发的训练菜单实例
type Session struct {
	Nonce     string    `json:"nonce"`
	UserID    string    `json:"userId"`
	ChannelID string    `json:"channelId"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// Store 保存已签发、尚未使用的菜单实例。
// Consume 必须是原子的：同一个nonce最多只能被成功取出一次。
type Store interface {
	Issue(ctx context.Context, s Session, ttl time.Duration) error
	Consume(ctx context.Context, nonce string) (Session, error)
}
