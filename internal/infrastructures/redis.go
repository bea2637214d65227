package infrastructures

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/safatanc/feastly-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     Config.REDIS_ADDRESS,
		Password: Config.REDIS_PASSWORD,
		DB:       0, // use default DB
	})

	// Test the connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect redis: %v", err)
	}

	return client
}

// NewRateLimiter returns a Redis-backed limiter, or an in-process one when
// REDIS_ADDRESS is unset.
func NewRateLimiter() ratelimit.RateLimiter {
	if Config.REDIS_ADDRESS == "" {
		logrus.Warn("REDIS_ADDRESS not set, using in-memory rate limiter")
		return ratelimit.NewMemoryRateLimiter()
	}
	return ratelimit.NewRedisRateLimiter(NewRedisClient(), Config.RATE_LIMIT_PREFIX)
}
