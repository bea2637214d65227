// Package ratelimit provides sliding window request limiters.
package ratelimit

import (
	"context"
	"time"
)

// Rate allows Requests per Window.
type Rate struct {
	Requests int
	Window   time.Duration
}

// RateLimitInfo is reported back to clients in X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo)
	Reset(ctx context.Context, key string) error
}

var (
	PublicAPILimit = Rate{Requests: 30, Window: time.Minute}

	AuthenticatedAPILimit = Rate{Requests: 60, Window: time.Minute}

	// CouponApplyLimit bounds code guessing per user.
	CouponApplyLimit = Rate{Requests: 10, Window: time.Minute}
)
