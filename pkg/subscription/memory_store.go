package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
}

// NewMemoryStore returns a store seeded with copies of subs.
func NewMemoryStore(subs ...*Subscription) *MemoryStore {
	s := &MemoryStore{subs: make(map[uuid.UUID]*Subscription, len(subs))}
	for _, sub := range subs {
		s.subs[sub.TenantID] = sub.Clone()
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, tenantID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[tenantID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return sub.Clone(), nil
}

// Save rejects records that break the invariants.
func (s *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.TenantID] = sub.Clone()
	return nil
}
