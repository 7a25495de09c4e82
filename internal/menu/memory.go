package menu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/stat-trainer-bot/pkg/lifecycle"
	"go.uber.org/zap"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore 是Redis未启用时使用的进程内菜单存储
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore 创建一个进程内菜单存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Issue(_ context.Context, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[s.Nonce]; exists {
		return fmt.Errorf("菜单实例 %s 已存在", s.Nonce)
	}
	m.entries[s.Nonce] = memoryEntry{session: s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, nonce string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[nonce]
	if !ok {
		return Session{}, ErrExpired
	}
	delete(m.entries, nonce)
	if !m.now().Before(e.expiresAt) {
		return Session{}, ErrExpired
	}
	return e.session, nil
}

// Sweep 删除所有已过期的实例，返回删除的数量
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for nonce, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, nonce)
			removed++
		}
	}
	return removed
}

// Len 返回当前保存的实例数
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RunSweeper 周期性清理过期实例，直到收到停机信号
func (m *MemoryStore) RunSweeper(h *lifecycle.Handle, interval time.Duration, log *zap.Logger) {
	log.Info("菜单清理器已启动", zap.Duration("interval", interval))
	for {
		if err := h.Sleep(interval); err != nil {
			log.Info("菜单清理器正在关闭")
			return
		}
		if n := m.Sweep(); n > 0 {
			log.Debug("已清理过期菜单", zap.Int("removed", n))
		}
	}
}
