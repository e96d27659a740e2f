package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/config"
	"github.com/tbourn/go-tutor-backend/internal/review"
)

func newTestCache(t *testing.T) *ReviewCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := NewClient(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewReviewCache(rdb, time.Minute)
}

func TestReviewCache_RoundTripAndInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	user := "u-" + uuid.NewString()

	if _, ok, err := c.Get(ctx, user, 10); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := review.Result{HasConversations: true, TotalTopics: 1, Topics: []review.Topic{{Subject: "Matemática", PriorityScore: 175}}}
	if err := c.Set(ctx, user, 10, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, user, 10)
	if err != nil || !ok || got.TotalTopics != 1 || got.Topics[0].PriorityScore != 175 {
		t.Fatalf("get: %+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := c.Get(ctx, user, 5); ok {
		t.Fatalf("different limit must miss")
	}

	if err := c.Invalidate(ctx, user); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, user, 10); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestNewReviewCache_DefaultTTL(t *testing.T) {
	if c := NewReviewCache(nil, 0); c.ttl != 5*time.Minute {
		t.Fatalf("ttl = %v", c.ttl)
	}
}
