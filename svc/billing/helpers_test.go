package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	"github.com/dmitrymomot/bizdir/svc/billing"
)

var now = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := now.AddDate(0, 0, days)
	return &t
}

func clock() time.Time { return now }

// memStore is an in-memory subscription.Store.
type memStore struct {
	mu      sync.Mutex
	subs    map[uuid.UUID]*subscription.Subscription
	saves   int
	saveErr error
	getErr  error
}

func newMemStore() *memStore {
	return &memStore{subs: make(map[uuid.UUID]*subscription.Subscription)}
}

func (s *memStore) Get(_ context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	sub, ok := s.subs[tenantID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub.Clone(), nil
}

func (s *memStore) Save(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.subs[sub.TenantID] = sub.Clone()
	s.saves++
	return nil
}

func (s *memStore) get(tenantID uuid.UUID) *subscription.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[tenantID].Clone()
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type fixture struct {
	tenantID  uuid.UUID
	store     *memStore
	resources *limits.MemoryStore
	locker    *billing.MemoryLocker
	svc       billing.Service
	inventory inventory
}

// inventory is three businesses with three offers each.
type inventory struct {
	businesses [3]uuid.UUID
	offers     [3][3]uuid.UUID
}

func newInventory() (inventory, limits.Inventory) {
	var ids inventory
	var inv limits.Inventory
	for i := range 3 {
		ids.businesses[i] = uuid.New()
		inv.Businesses = append(inv.Businesses, limits.Business{ID: ids.businesses[i], Name: "Business", Status: "active"})
		for j := range 3 {
			ids.offers[i][j] = uuid.New()
			inv.Offers = append(inv.Offers, limits.Offer{ID: ids.offers[i][j], BusinessID: ids.businesses[i], Title: "Offer", Status: "active"})
		}
	}
	return ids, inv
}

// newFixture seeds sub (may be nil) and, when full is set, a premium-sized inventory.
func newFixture(t *testing.T, sub *subscription.Subscription, full bool) *fixture {
	t.Helper()

	f := &fixture{
		tenantID:  uuid.New(),
		store:     newMemStore(),
		resources: limits.NewMemoryStore(),
		locker:    billing.NewMemoryLocker(),
	}
	if sub != nil {
		sub.TenantID = f.tenantID
		f.store.subs[f.tenantID] = sub
	}
	if full {
		ids, inv := newInventory()
		f.inventory = ids
		f.resources.Put(f.tenantID, inv)
	}
	f.svc = billing.NewService(
		subscription.DefaultCatalog(),
		f.store,
		limits.NewTracker(f.resources),
		f.resources,
		f.locker,
		billing.WithClock(clock),
	)
	return f
}

func premiumActive() *subscription.Subscription {
	return &subscription.Subscription{
		PlanID:    subscription.PremiumPlanID,
		PlanName:  "Premium",
		Status:    subscription.BillingActive,
		AutoRenew: true,
		EndDate:   at(28),
	}
}

// premiumLapsed is a premium record whose scheduled downgrade already took effect.
func premiumLapsed() *subscription.Subscription {
	reason := "too expensive"
	return &subscription.Subscription{
		PlanID:                 subscription.PremiumPlanID,
		PlanName:               "Premium",
		Status:                 subscription.BillingActive,
		EndDate:                at(-1),
		DowngradeScheduled:     true,
		DowngradeEffectiveDate: at(-1),
		DowngradeReason:        &reason,
	}
}

func freeActive() *subscription.Subscription {
	return &subscription.Subscription{
		PlanID:   subscription.FreePlanID,
		PlanName: "Free",
		Status:   subscription.BillingActive,
	}
}

// staleCounts reports counts that lag behind the lists it serves.
type staleCounts struct {
	*limits.MemoryStore
}

func (staleCounts) CountResources(context.Context, uuid.UUID) (limits.Counts, error) {
	return limits.Counts{Businesses: 1, Offers: 1}, nil
}
