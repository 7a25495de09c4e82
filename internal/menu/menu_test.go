package menu

import (
	"context"
	"testing"
	"time"

	"github.com/SlpAus/stat-trainer-bot/pkg/lifecycle"
	"github.com/SlpAus/stat-trainer-bot/pkg/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/bmizerany/assert"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newMenus(t *testing.T, store Store) *Menus {
	t.Helper()
	signer, err := token.NewSigner("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	return New(store, signer, time.Minute)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb), mr
}

// 两种存储实现共享同一组协议测试
func eachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("redis", func(t *testing.T) {
		store, _ := newRedisStore(t)
		fn(t, store)
	})
}

func TestPresentThenResolve(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store) {
		m := newMenus(t, store)
		ctx := context.Background()

		customID, err := m.Present(ctx, "A", "chan")
		assert.Equal(t, nil, err)
		assert.Equal(t, TrainKind, token.Kind(customID))

		s, err := m.Resolve(ctx, customID, "A")
		assert.Equal(t, nil, err)
		assert.Equal(t, "A", s.UserID)
		assert.Equal(t, "chan", s.ChannelID)

		// 一次性：第二次使用同一个菜单失败
		_, err = m.Resolve(ctx, customID, "A")
		assert.Equal(t, ErrExpired, err)
	})
}

func TestForeignUserCannotResolve(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store) {
		m := newMenus(t, store)
		ctx := context.Background()

		customID, err := m.Present(ctx, "A", "chan")
		assert.Equal(t, nil, err)

		_, err = m.Resolve(ctx, customID, "B")
		assert.Equal(t, ErrForeign, err)

		// 别人的尝试不会消耗菜单
		s, err := m.Resolve(ctx, customID, "A")
		assert.Equal(t, nil, err)
		assert.Equal(t, "A", s.UserID)
	})
}

func TestForgedCustomIDIsRejected(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store) {
		m := newMenus(t, store)
		ctx := context.Background()

		forger, _ := token.NewSigner("attacker")
		forged, _ := forger.Encode(token.Payload{Kind: TrainKind, Nonce: "n", UserID: "B"})
		_, err := m.Resolve(ctx, forged, "B")
		assert.Equal(t, token.ErrBadSignature, err)

		_, err = m.Resolve(ctx, "garbage", "B")
		assert.Equal(t, token.ErrBadSignature, err)
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	assert.Equal(t, nil, store.Issue(ctx, Session{Nonce: "a", UserID: "A"}, time.Minute))
	assert.Equal(t, nil, store.Issue(ctx, Session{Nonce: "b", UserID: "B"}, time.Hour))
	assert.NotEqual(t, nil, store.Issue(ctx, Session{Nonce: "a", UserID: "A"}, time.Minute))

	now = now.Add(2 * time.Minute)
	_, err := store.Consume(ctx, "a")
	assert.Equal(t, ErrExpired, err)

	assert.Equal(t, 0, store.Sweep())
	assert.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	assert.Equal(t, nil, store.Issue(ctx, Session{Nonce: "a", UserID: "A"}, time.Minute))
	assert.NotEqual(t, nil, store.Issue(ctx, Session{Nonce: "a", UserID: "A"}, time.Minute))

	mr.FastForward(2 * time.Minute)
	_, err := store.Consume(ctx, "a")
	assert.Equal(t, ErrExpired, err)
}

func TestSweeperStopsOnShutdown(t *testing.T) {
	store := NewMemoryStore()
	mgr := lifecycle.NewManager(zap.NewNop())
	err := mgr.Go("menu-sweeper", func(h *lifecycle.Handle) {
		store.RunSweeper(h, time.Millisecond, zap.NewNop())
	})
	assert.Equal(t, nil, err)

	mgr.Shutdown()
	assert.Equal(t, 0, len(mgr.WaitWithTimeout(time.Second)))
}
