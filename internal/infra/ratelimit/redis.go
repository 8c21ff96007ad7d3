package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares counters between instances. Each window is one key
// that expires on its own.
type RedisLimiter struct {
	client    *redis.Client
	limit     int64
	window    time.Duration
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, limit int, every time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		limit:     int64(limit),
		window:    every,
		keyPrefix: "ratelimit:visitors:",
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := rl.keyPrefix + key

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= rl.limit, nil
}
