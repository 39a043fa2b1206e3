package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript bumps the counter and starts its window on the first hit.
var incrScript = redis.NewScript(`
local c = redis.call('INCRBY', KEYS[1], ARGV[1])
if c == tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {c, redis.call('PTTL', KEYS[1])}
`)

// RedisStore keeps counters in Redis so that every instance sees the same
// window.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithStorePrefix sets the key prefix. Defaults to "ratelimit:".
func WithStorePrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a store over client. Panics if client is nil.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client cannot be nil")
	}
	s := &RedisStore{client: client, prefix: "ratelimit:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + key}, incr, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
