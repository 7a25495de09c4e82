package stats

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/SlpAus/stat-trainer-bot/internal/platform/config"
	"github.com/SlpAus/stat-trainer-bot/internal/platform/database"
	"github.com/bmizerany/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenDB(config.DatabaseConfig{
		Driver: config.DriverSqlite,
		Sqlite: config.SqliteConfig{Path: filepath.Join(t.TempDir(), "stats.db")},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	return db
}

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return store, db
}

func triple(r Record) [3]int {
	return [3]int{r.Attack, r.Speed, r.Defense}
}

func TestParseCode(t *testing.T) {
	for code, want := range map[string]Stat{"str": Attack, "sp": Speed, "def": Defense, "STR": Attack, "Def": Defense} {
		got, err := ParseCode(code)
		assert.Equal(t, nil, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCode("hp")
	assert.T(t, errors.Is(err, ErrInvalidStat))

	for _, s := range All() {
		back, err := ParseCode(s.Code())
		assert.Equal(t, nil, err)
		assert.Equal(t, s, back)
	}
}

func TestGetWithoutRecord(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "nobody")
	assert.Equal(t, ErrNoRecord, err)
}

func TestEnsureEligibleCreatesDefaultRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.EnsureEligible(ctx, "A")
	assert.Equal(t, nil, err)
	assert.Equal(t, [3]int{0, 0, 0}, triple(rec))
	assert.Equal(t, true, rec.HasAction)

	rec, err = store.Get(ctx, "A")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, rec.HasAction)
}

func TestTrainOncePerRound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Train(ctx, "A", Attack)
	assert.Equal(t, nil, err)
	assert.Equal(t, [3]int{1, 0, 0}, triple(rec))
	assert.Equal(t, false, rec.HasAction)

	_, err = store.Train(ctx, "A", Speed)
	assert.Equal(t, ErrActionUnavailable, err)

	_, err = store.EnsureEligible(ctx, "A")
	assert.Equal(t, ErrActionUnavailable, err)

	rec, err = store.Get(ctx, "A")
	assert.Equal(t, nil, err)
	assert.Equal(t, [3]int{1, 0, 0}, triple(rec))
	assert.Equal(t, false, rec.HasAction)
}

func TestTrainOnlyTouchesInvoker(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Train(ctx, "A", Defense)
	assert.Equal(t, nil, err)
	_, err = store.Train(ctx, "B", Speed)
	assert.Equal(t, nil, err)

	a, _ := store.Get(ctx, "A")
	b, _ := store.Get(ctx, "B")
	assert.Equal(t, [3]int{0, 0, 1}, triple(a))
	assert.Equal(t, [3]int{0, 1, 0}, triple(b))
}

func TestConcurrentTrainSucceedsOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Train(ctx, "A", Attack)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrActionUnavailable):
				rejected++
			default:
				t.Errorf("意外的错误: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	rec, err := store.Get(ctx, "A")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, rec.Attack)
}

func TestResetActions(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	store.Train(ctx, "A", Attack)
	store.Train(ctx, "B", Speed)
	store.EnsureEligible(ctx, "C")

	n, err := ResetActions(db)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), n)

	for _, id := range []string{"A", "B", "C"} {
		rec, err := store.Get(ctx, id)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, rec.HasAction, id)
	}
	a, _ := store.Get(ctx, "A")
	assert.Equal(t, [3]int{1, 0, 0}, triple(a))
}

func TestSetStat(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Train(ctx, "A", Attack)

	rec, err := store.SetStat(ctx, "A", Speed, 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, [3]int{1, 5, 0}, triple(rec))
	assert.Equal(t, false, rec.HasAction)

	rec, err = store.SetStat(ctx, "A", Defense, -3)
	assert.Equal(t, nil, err)
	assert.Equal(t, [3]int{1, 5, -3}, triple(rec))

	_, err = store.SetStat(ctx, "ghost", Attack, 1)
	assert.Equal(t, ErrNoRecord, err)
	_, err = store.Get(ctx, "ghost")
	assert.Equal(t, ErrNoRecord, err)
}

func TestInvalidStatIsRejected(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Train(context.Background(), "A", Stat(42))
	assert.T(t, errors.Is(err, ErrInvalidStat))
	_, err = store.Get(context.Background(), "A")
	assert.Equal(t, ErrNoRecord, err)
}

func TestCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	store.Train(ctx, "A", Attack)
	store.EnsureEligible(ctx, "B")

	n, err := store.Count(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), n)
}
