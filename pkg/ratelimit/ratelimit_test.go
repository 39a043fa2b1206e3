package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/pkg/ratelimit"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestNewFixedWindow(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	tests := []struct {
		name   string
		store  ratelimit.Store
		limit  int
		window time.Duration
		err    error
	}{
		{"no store", nil, 1, time.Second, ratelimit.ErrStoreRequired},
		{"zero limit", store, 0, time.Second, ratelimit.ErrInvalidLimit},
		{"zero window", store, 1, 0, ratelimit.ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimit.NewFixedWindow(tt.store, tt.limit, tt.window)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFixedWindowMemory(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimit.NewMemoryStore(ratelimit.WithClock(c.now))
	limiter, err := ratelimit.NewFixedWindow(store, 2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	for i := range 2 {
		res, err := limiter.Allow(ctx, "tenant")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "tenant")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	other, err := limiter.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	c.advance(time.Minute)
	res, err = limiter.Allow(ctx, "tenant")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "new window")

	require.NoError(t, limiter.Reset(ctx, "other"))
	_, err = limiter.Allow(ctx, "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}

func TestFixedWindowRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := ratelimit.NewRedisStore(client, ratelimit.WithStorePrefix("bizdir:rl:"))
	limiter, err := ratelimit.NewFixedWindow(store, 1, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "tenant")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, mr.Exists("bizdir:rl:tenant"))
	assert.Equal(t, time.Minute, mr.TTL("bizdir:rl:tenant"))

	res, err = limiter.Allow(ctx, "tenant")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	mr.FastForward(time.Minute)
	res, err = limiter.Allow(ctx, "tenant")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	require.NoError(t, limiter.Reset(ctx, "tenant"))
	assert.False(t, mr.Exists("bizdir:rl:tenant"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimit.Result, error) {
	return nil, errors.New("store down")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	byHeader := func(r *http.Request) string { return r.Header.Get("X-Key") }

	serve := func(h http.Handler, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if key != "" {
			req.Header.Set("X-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("rejects over the limit", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Minute)
		require.NoError(t, err)
		h := ratelimit.Middleware(limiter, byHeader)(ok)

		rec := serve(h, "a")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = serve(h, "a")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Minute)
		require.NoError(t, err)
		h := ratelimit.Middleware(limiter, byHeader)(ok)

		for range 3 {
			assert.Equal(t, http.StatusOK, serve(h, "").Code)
		}
	})

	t.Run("custom rejection and skip", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Minute)
		require.NoError(t, err)
		h := ratelimit.Middleware(limiter, byHeader,
			ratelimit.WithOnLimitReached(func(w http.ResponseWriter, _ *http.Request, _ *ratelimit.Result) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
			ratelimit.WithSkipFunc(func(r *http.Request) bool { return r.Header.Get("X-Key") == "admin" }),
		)(ok)

		serve(h, "a")
		assert.Equal(t, http.StatusServiceUnavailable, serve(h, "a").Code)
		serve(h, "admin")
		assert.Equal(t, http.StatusOK, serve(h, "admin").Code)
	})

	t.Run("fails open", func(t *testing.T) {
		t.Parallel()
		h := ratelimit.Middleware(failingLimiter{}, byHeader)(ok)
		assert.Equal(t, http.StatusOK, serve(h, "a").Code)
	})
}
