package limits

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory CountSource that also applies deletions with
// the same cascade rule as the database. Intended for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*Inventory
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[uuid.UUID]*Inventory)}
}

// Put replaces a tenant's inventory with a copy of inv.
func (s *MemoryStore) Put(tenantID uuid.UUID, inv Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenantID] = &Inventory{
		Businesses: slices.Clone(inv.Businesses),
		Offers:     slices.Clone(inv.Offers),
	}
}

func (s *MemoryStore) CountResources(_ context.Context, tenantID uuid.UUID) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenants[tenantID].Counts(), nil
}

func (s *MemoryStore) ListResources(_ context.Context, tenantID uuid.UUID) (*Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.tenants[tenantID]
	if !ok {
		return &Inventory{}, nil
	}
	return &Inventory{
		Businesses: slices.Clone(inv.Businesses),
		Offers:     slices.Clone(inv.Offers),
	}, nil
}

// DeleteResources removes the given businesses with all their offers, and the
// given offers. Unknown IDs are ignored.
func (s *MemoryStore) DeleteResources(_ context.Context, tenantID uuid.UUID, businessIDs, offerIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	inv.Businesses = slices.DeleteFunc(inv.Businesses, func(b Business) bool {
		return slices.Contains(businessIDs, b.ID)
	})
	inv.Offers = slices.DeleteFunc(inv.Offers, func(o Offer) bool {
		return slices.Contains(offerIDs, o.ID) || slices.Contains(businessIDs, o.BusinessID)
	})
	return nil
}
