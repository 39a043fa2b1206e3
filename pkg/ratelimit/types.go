package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// Result is the outcome of a single check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// It is zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return max(0, time.Until(r.ResetAt))
}

// Limiter decides whether a hit for key is allowed and records it.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Store keeps per-key counters that expire with their window.
type Store interface {
	// IncrementAndGet adds incr to the counter of key, starting a new window
	// if none is running, and returns the new value and the time left.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (current int64, ttl time.Duration, err error)

	Delete(ctx context.Context, key string) error
}

// KeyFunc extracts the rate limit key from a request. An empty key skips
// limiting.
type KeyFunc func(*http.Request) string
