// Package cache holds short-lived read caches backed by Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tbourn/go-tutor-backend/internal/config"
	"github.com/tbourn/go-tutor-backend/internal/review"
)

const keyPrefix = "tutor:review:"

// ReviewCache stores ranked review results per user. All results of a user
// live in one hash (one field per limit), so invalidation is a single DEL.
type ReviewCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewClient dials Redis and pings it.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewReviewCache wraps rdb. ttl <= 0 defaults to five minutes.
func NewReviewCache(rdb *goredis.Client, ttl time.Duration) *ReviewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReviewCache{rdb: rdb, ttl: ttl}
}

func userKey(userID string) string { return keyPrefix + userID }

// Get returns the cached result for (userID, limit). A miss is (nil, false, nil).
func (c *ReviewCache) Get(ctx context.Context, userID string, limit int) (*review.Result, bool, error) {
	raw, err := c.rdb.HGet(ctx, userKey(userID), strconv.Itoa(limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res review.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		// Unreadable entries are treated as misses and dropped.
		_ = c.rdb.Del(ctx, userKey(userID)).Err()
		return nil, false, nil
	}
	return &res, true, nil
}

// Set stores res for (userID, limit) and refreshes the TTL of the user's hash.
func (c *ReviewCache) Set(ctx context.Context, userID string, limit int, res review.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	key := userKey(userID)
	_, err = c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, strconv.Itoa(limit), raw)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

// Invalidate drops every cached result of userID.
func (c *ReviewCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, userKey(userID)).Err()
}
