package access

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles password attempts per assignment and session.
type Limiter interface {
	Allow(ctx context.Context, assignmentID, sessionID string) (LimitResult, error)
}

type LimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RedisLimiter is a fixed-window counter kept in Redis.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb redis.UniversalClient, limit int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

func limiterKey(assignmentID, sessionID string) string {
	return fmt.Sprintf("unlock:%s:%s", assignmentID, sessionID)
}

func (l *RedisLimiter) Allow(ctx context.Context, assignmentID, sessionID string) (LimitResult, error) {
	key := limiterKey(assignmentID, sessionID)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return LimitResult{}, fmt.Errorf("password attempt limiter: %w", err)
	}

	count := incr.Val()
	res := LimitResult{
		Allowed:   count <= l.limit,
		Remaining: max(0, l.limit-count),
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
	}
	return res, nil
}

// NoLimit allows every attempt. Used when Redis is not configured.
type NoLimit struct{}

func (NoLimit) Allow(context.Context, string, string) (LimitResult, error) {
	return LimitResult{Allowed: true}, nil
}
