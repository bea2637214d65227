package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRateLimiter is a sliding window limiter shared by every instance of
// the service. Each key is a sorted set of request timestamps.
type RedisRateLimiter struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRedisRateLimiter(redis *redis.Client, keyPrefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:     redis,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisRateLimiter) windowKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)
}

// Allow records the request and reports whether it fits in the window.
// Rejected requests are removed again so they do not extend the lockout.
// Redis errors fail open.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo) {
	now := time.Now()
	windowKey := l.windowKey(key)
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	info := RateLimitInfo{Limit: limit.Requests, Reset: now.Add(limit.Window)}

	var count *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, windowKey, "-inf", strconv.FormatInt(now.Add(-limit.Window).UnixNano(), 10))
		count = pipe.ZCard(ctx, windowKey)
		pipe.ZAdd(ctx, windowKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
		pipe.PExpire(ctx, windowKey, limit.Window)
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("key", windowKey).Warn("rate limiter unavailable")
		return true, info
	}

	seen := int(count.Val())
	if seen >= limit.Requests {
		if err := l.redis.ZRem(ctx, windowKey, member).Err(); err != nil {
			logrus.WithError(err).WithField("key", windowKey).Warn("failed to drop rejected request")
		}
		return false, info
	}

	info.Remaining = limit.Requests - seen - 1
	return true, info
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, l.windowKey(key)).Err()
}
