package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter answers whether a request identified by key (typically a client IP)
// may proceed for a given purpose (login, signup, ...).
type Limiter interface {
	Allow(ctx context.Context, key, purpose string) (bool, error)
}

const (
	defaultWindow = time.Minute
	defaultLimit  = 10
)

// RedisLimiter is a fixed-window counter backed by Redis. Counters expire with
// the window, so no cleanup is needed.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int64
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		window: defaultWindow,
		limit:  defaultLimit,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key, purpose string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", purpose, key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count request: %w", err)
	}

	return incr.Val() <= l.limit, nil
}

// NoopLimiter allows everything. Wired when no Redis address is configured.
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

func (NoopLimiter) Allow(ctx context.Context, key, purpose string) (bool, error) {
	return true, nil
}
