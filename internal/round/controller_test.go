package round

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/config"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/database"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/metadata"
	"github.com/SlpAus/stat-trainer-bot/internal/stats"
	"github.com/bmizerany/assert"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*Controller, *stats.Store) {
	t.Helper()
	db, err := database.OpenDB(config.DatabaseConfig{
		Driver: config.DriverSqlite,
		Sqlite: config.SqliteConfig{Path: filepath.Join(t.TempDir(), "round.db")},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	store := stats.NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatal(err)
	}
	if err := metadata.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return NewController(db, zap.NewNop()), store
}

func TestResetRestoresEveryAction(t *testing.T) {
	c, store := setup(t)
	ctx := context.Background()
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	store.Train(ctx, "A", stats.Attack)
	store.Train(ctx, "B", stats.Defense)
	store.EnsureEligible(ctx, "C")

	info, err := c.Current(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), info.Round)
	assert.T(t, info.LastResetAt.IsZero())

	res, err := c.Reset(ctx, "admin")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), res.Round)
	assert.Equal(t, int64(3), res.Users)

	for _, id := range []string{"A", "B", "C"} {
		rec, err := store.Get(ctx, id)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, rec.HasAction, id)
	}

	info, err = c.Current(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), info.Round)
	assert.T(t, info.LastResetAt.Equal(fixed))

	// 重置之后可以再次训练
	rec, err := store.Train(ctx, "A", stats.Attack)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, rec.Attack)
}

func TestResetWithNoRecords(t *testing.T) {
	c, _ := setup(t)
	res, err := c.Reset(context.Background(), "admin")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), res.Users)
	assert.Equal(t, int64(2), res.Round)
}

func TestConcurrentResetsAdvanceEveryRound(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	const resets = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool)
	for i := 0; i < resets; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Reset(ctx, "admin")
			if err != nil {
				t.Errorf("重置失败: %v", err)
				return
			}
			mu.Lock()
			seen[res.Round] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// 每次重置拿到不同的回合编号，没有丢失的递增
	assert.Equal(t, resets, len(seen))
	info, err := c.Current(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1+resets), info.Round)
}
