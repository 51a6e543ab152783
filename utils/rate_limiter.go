package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// SlidingWindowLimiter counts requests per key in a Redis sorted set so the
// limit holds across API instances.
type SlidingWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewSlidingWindowLimiter(client *redis.Client, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "rate_limit:",
	}
}

// Allow records one request for key and reports whether it fits the window,
// along with the remaining budget.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := l.prefix + key

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	count := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), GenerateUUID()[:8]),
	})
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, l.limit, err
	}

	used := int(count.Val())
	if used >= l.limit {
		return false, 0, nil
	}
	return true, l.limit - used - 1, nil
}

func (l *SlidingWindowLimiter) Limit() int {
	return l.limit
}
