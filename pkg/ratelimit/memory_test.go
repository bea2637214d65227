package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiterSlidingWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.nowFunc = func() time.Time { return now }

	rate := Rate{Requests: 2, Window: time.Minute}
	ctx := context.Background()

	if ok, info := limiter.Allow(ctx, "user:1", rate); !ok || info.Remaining != 1 {
		t.Fatalf("first request: allowed=%v remaining=%d", ok, info.Remaining)
	}
	if ok, info := limiter.Allow(ctx, "user:1", rate); !ok || info.Remaining != 0 {
		t.Fatalf("second request: allowed=%v remaining=%d", ok, info.Remaining)
	}
	if ok, _ := limiter.Allow(ctx, "user:1", rate); ok {
		t.Fatalf("third request within window should be rejected")
	}
	if ok, _ := limiter.Allow(ctx, "user:2", rate); !ok {
		t.Fatalf("other keys must not share the window")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := limiter.Allow(ctx, "user:1", rate); !ok {
		t.Fatalf("request after window should be allowed")
	}
}

func TestMemoryRateLimiterReset(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	rate := Rate{Requests: 1, Window: time.Minute}
	ctx := context.Background()

	limiter.Allow(ctx, "ip:1.2.3.4", rate)
	if ok, _ := limiter.Allow(ctx, "ip:1.2.3.4", rate); ok {
		t.Fatalf("expected limit to be hit")
	}
	if err := limiter.Reset(ctx, "ip:1.2.3.4"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := limiter.Allow(ctx, "ip:1.2.3.4", rate); !ok {
		t.Fatalf("expected request after reset to be allowed")
	}
}
