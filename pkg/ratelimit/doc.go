// Package ratelimit throttles requests with a fixed-window counter.
//
// A FixedWindow limiter counts hits per key in a Store and rejects the hit
// that exceeds the limit until the window expires. MemoryStore serves a
// single process; RedisStore shares counters between instances.
//
//	store := ratelimit.NewRedisStore(client, ratelimit.WithStorePrefix("bizdir:rl:"))
//	limiter, err := ratelimit.NewFixedWindow(store, 10, time.Minute)
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimit.Middleware(limiter, func(r *http.Request) string {
//		return r.Header.Get("X-Tenant-ID")
//	}))
//
// Middleware fails open: store errors let the request through.
package ratelimit
