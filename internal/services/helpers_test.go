package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/prompt"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/review"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection serializes writers from background goroutines.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func setPlan(t *testing.T, db *gorm.DB, userID string, plan domain.Plan) *domain.Profile {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.EnsureProfile(ctx, db, userID); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if err := repo.SetProfilePlan(ctx, db, userID, plan); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	p, err := repo.GetProfileByUser(ctx, db, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	return p
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// fakeLLM answers chat turns with reply and title requests with title.
type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	title    string
	err      error
	titleErr error
	usage    llm.Usage
	systems  []string
	turns    [][]llm.Turn
}

func (f *fakeLLM) client() llm.Client {
	return llm.ClientFunc(func(ctx context.Context, system string, history []llm.Turn) (*llm.Reply, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.systems = append(f.systems, system)
		f.turns = append(f.turns, append([]llm.Turn(nil), history...))
		if isTitleRequest(system) {
			if f.titleErr != nil {
				return nil, f.titleErr
			}
			return &llm.Reply{Content: f.title}, nil
		}
		if f.err != nil {
			return nil, f.err
		}
		return &llm.Reply{Content: f.reply, Usage: f.usage}, nil
	})
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.systems)
}

func (f *fakeLLM) chatSystem(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.systems {
		if isTitleRequest(s) {
			continue
		}
		if n == i {
			return s
		}
		n++
	}
	return ""
}

// memCache is an in-memory ReviewCache.
type memCache struct {
	mu          sync.Mutex
	data        map[string]review.Result
	gets        int
	invalidated []string
	failGet     bool
}

func newMemCache() *memCache { return &memCache{data: map[string]review.Result{}} }

func (c *memCache) key(userID string, limit int) string { return fmt.Sprintf("%s/%d", userID, limit) }

func (c *memCache) Get(_ context.Context, userID string, limit int) (*review.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, false, fmt.Errorf("cache down")
	}
	r, ok := c.data[c.key(userID, limit)]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *memCache) Set(_ context.Context, userID string, limit int, res review.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.key(userID, limit)] = res
	return nil
}

func (c *memCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	for k := range c.data {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+"/" {
			delete(c.data, k)
		}
	}
	return nil
}

func isTitleRequest(system string) bool { return system == prompt.TitleInstruction }
