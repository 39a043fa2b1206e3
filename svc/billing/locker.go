package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Locker grants short-lived exclusive keys. TryAcquire never waits: it
// reports acquired=false when the key is held. pkg/redis.Locker implements it.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// MemoryLocker is a process-local Locker for tests and single-instance runs.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryLease
	now  func() time.Time
}

type memoryLease struct {
	token   uuid.UUID
	expires time.Time
}

// NewMemoryLocker returns an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryLease), now: time.Now}
}

func (l *MemoryLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expires) {
		return nil, false, nil
	}

	token := uuid.New()
	l.held[key] = memoryLease{token: token, expires: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key].token == token {
				delete(l.held, key)
			}
		})
	}
	return release, true, nil
}

func lockKey(tenantID uuid.UUID) string {
	return "billing:" + tenantID.String()
}
