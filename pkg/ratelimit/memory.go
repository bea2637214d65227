package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is a single-process sliding window limiter, used when no
// Redis address is configured.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	nowFunc func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		hits:    make(map[string][]time.Time),
		nowFunc: time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	windowStart := now.Add(-limit.Window)

	kept := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(windowStart) {
			kept = append(kept, hit)
		}
	}

	allowed := len(kept) < limit.Requests
	if allowed {
		kept = append(kept, now)
	}
	l.hits[key] = kept

	remaining := limit.Requests - len(kept)
	if remaining < 0 {
		remaining = 0
	}

	return allowed, RateLimitInfo{
		Limit:     limit.Requests,
		Remaining: remaining,
		Reset:     now.Add(limit.Window),
	}
}

func (l *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
	return nil
}
