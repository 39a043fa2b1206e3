package ratelimit

import (
	"context"
	"errors"
	"time"
)

// FixedWindow allows up to limit hits per key in each window.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindow creates a limiter over store.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{store: store, limit: limit, window: window, now: time.Now}, nil
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := l.store.IncrementAndGet(ctx, key, 1, l.window)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if ttl <= 0 {
		ttl = l.window
	}

	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(0, l.limit-int(count)),
		ResetAt:   l.now().Add(ttl),
	}, nil
}

// Reset clears the counter of key.
func (l *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Delete(ctx, key)
}
