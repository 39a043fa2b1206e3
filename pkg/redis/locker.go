package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only while it still holds our token,
// so an expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const releaseTimeout = 5 * time.Second

// Locker hands out short-lived exclusive locks backed by SET NX PX.
// It never waits: a held key is reported as not acquired.
type Locker struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithKeyPrefix namespaces every lock key. Defaults to "lock:".
func WithKeyPrefix(prefix string) LockerOption {
	return func(l *Locker) { l.prefix = prefix }
}

// WithLockerLogger sets the logger used to report failed releases.
func WithLockerLogger(log *slog.Logger) LockerOption {
	return func(l *Locker) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLocker returns a Locker using client. Panics if client is nil.
func NewLocker(client redis.UniversalClient, opts ...LockerOption) *Locker {
	if client == nil {
		panic("redis: locker client cannot be nil")
	}
	l := &Locker{
		client: client,
		prefix: "lock:",
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryAcquire attempts to take the lock for key. The lock expires after ttl
// even if release is never called. release is safe to call more than once.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error) {
	if ttl <= 0 {
		return nil, false, ErrInvalidLockTTL
	}

	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Join(ErrLockFailed, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
				l.logger.WarnContext(ctx, "failed to release lock",
					slog.String("key", fullKey),
					slog.String("error", err.Error()))
			}
		})
	}
	return release, true, nil
}
