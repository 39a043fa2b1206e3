package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/redis"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	"github.com/dmitrymomot/bizdir/svc/billing"
)

var _ billing.Locker = (*redis.Locker)(nil)

func TestService_Snapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("premium active within quota", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), true)

		snap, err := f.svc.Snapshot(ctx, f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPremiumActive, snap.Classification.Status)
		assert.Equal(t, limits.Counts{Businesses: 3, Offers: 9}, snap.Counts)
		assert.Len(t, snap.Inventory.Businesses, 3)
		assert.False(t, snap.Blocked())
		assert.Equal(t, now, snap.FetchedAt)
	})

	t.Run("lapsed premium must shrink to free", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)

		snap, err := f.svc.Snapshot(ctx, f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPremiumExpired, snap.Classification.Status)
		require.True(t, snap.Blocked())
		assert.Equal(t, &limits.EnforcementRequest{
			TargetPlanID:       subscription.FreePlanID,
			MaxBusinesses:      1,
			MaxOffers:          3,
			CurrentBusinesses:  3,
			CurrentOffers:      9,
			BusinessesToRemove: 2,
			OffersToRemove:     6,
		}, snap.Enforcement)
	})

	t.Run("tenant without a record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, false)

		snap, err := f.svc.Snapshot(ctx, f.tenantID)
		require.NoError(t, err)
		assert.Nil(t, snap.Subscription)
		assert.Equal(t, subscription.StatusNonActivated, snap.Classification.Status)
		assert.False(t, snap.Blocked())
	})

	t.Run("counts and lists come from one read", func(t *testing.T) {
		t.Parallel()
		resources := limits.NewMemoryStore()
		ids, inv := newInventory()
		tenantID := uuid.New()
		resources.Put(tenantID, inv)

		sub := premiumLapsed()
		sub.TenantID = tenantID
		store := newMemStore()
		store.subs[tenantID] = sub

		svc := billing.NewService(
			subscription.DefaultCatalog(),
			store,
			limits.NewTracker(staleCounts{resources}),
			resources,
			billing.NewMemoryLocker(),
			billing.WithClock(clock),
		)

		snap, err := svc.Snapshot(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, snap.Inventory.Counts(), snap.Counts)
		require.True(t, snap.Blocked())
		assert.Equal(t, 3, snap.Enforcement.CurrentBusinesses)
		assert.Equal(t, 9, snap.Enforcement.CurrentOffers)

		offers := append([]uuid.UUID{}, ids.offers[0][:]...)
		offers = append(offers, ids.offers[1][:]...)
		sel := limits.Selection{BusinessIDs: ids.businesses[1:], OfferIDs: offers}
		assert.True(t, limits.ValidateSelection(snap.Enforcement, sel, snap.Inventory).Valid)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)
		f.store.getErr = errors.New("connection reset")

		_, err := f.svc.Snapshot(ctx, f.tenantID)
		assert.ErrorIs(t, err, billing.ErrFailedToLoadSubscription)
	})
}

func TestService_ScheduleDowngrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("schedules at end of period", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)

		res, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "too expensive")
		require.NoError(t, err)
		assert.Empty(t, res.Notice)
		assert.Equal(t, *at(28), res.Schedule.EffectiveDate)
		assert.Equal(t, 28, res.Schedule.DaysRemaining)
		assert.Equal(t, subscription.StatusPremiumGracePeriod, res.Snapshot.Classification.Status)
		assert.True(t, res.Snapshot.Classification.ShowGraceBanner)

		stored := f.store.get(f.tenantID)
		assert.True(t, stored.DowngradeScheduled)
		assert.False(t, stored.AutoRenew)
		require.NotNil(t, stored.DowngradeReason)
		assert.Equal(t, "too expensive", *stored.DowngradeReason)
	})

	t.Run("already scheduled is a notice", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)

		first, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "too expensive")
		require.NoError(t, err)

		second, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "again")
		require.NoError(t, err)
		assert.Equal(t, billing.NoticeAlreadyScheduled, second.Notice)
		assert.Equal(t, first.Schedule.EffectiveDate, second.Schedule.EffectiveDate)
		assert.Equal(t, "too expensive", second.Schedule.Reason)
		assert.Equal(t, 1, f.store.saveCount())
	})

	t.Run("reason required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)

		_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "   ")
		assert.ErrorIs(t, err, subscription.ErrReasonRequired)
		assert.True(t, billing.IsValidation(err))
		assert.Zero(t, f.store.saveCount())
	})

	t.Run("free plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, freeActive(), false)

		_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "why not")
		assert.ErrorIs(t, err, subscription.ErrFreePlan)
		assert.True(t, billing.IsConflict(err))
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, false)

		_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "bye")
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("save failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)
		f.store.saveErr = errors.New("disk full")

		_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "bye")
		assert.ErrorIs(t, err, billing.ErrFailedToSaveSubscription)
		assert.False(t, billing.IsConflict(err))
	})
}

func TestService_CancelScheduledDowngrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, premiumActive(), false)

	_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "too expensive")
	require.NoError(t, err)

	snap, err := f.svc.CancelScheduledDowngrade(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPremiumActive, snap.Classification.Status)
	assert.True(t, snap.Subscription.AutoRenew)
	assert.False(t, snap.Subscription.DowngradeScheduled)
	assert.Nil(t, snap.Subscription.DowngradeReason)
	assert.Nil(t, snap.Subscription.DowngradeEffectiveDate)

	_, err = f.svc.CancelScheduledDowngrade(ctx, f.tenantID)
	assert.ErrorIs(t, err, subscription.ErrNoDowngradeScheduled)
	assert.Equal(t, 2, f.store.saveCount())
}

func TestService_AutoRenewal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, premiumActive(), false)

	snap, err := f.svc.CancelAutoRenewal(ctx, f.tenantID, "")
	assert.ErrorIs(t, err, subscription.ErrReasonRequired)
	assert.Nil(t, snap)

	snap, err = f.svc.CancelAutoRenewal(ctx, f.tenantID, "manual payments")
	require.NoError(t, err)
	assert.False(t, snap.Subscription.AutoRenew)
	assert.False(t, snap.Subscription.DowngradeScheduled)
	assert.Equal(t, subscription.StatusPremiumActive, snap.Classification.Status)
	assert.Equal(t, 28, snap.Classification.DaysRemaining)
	require.NotNil(t, snap.Subscription.AutoRenewCancelReason)
	assert.Equal(t, "manual payments", *snap.Subscription.AutoRenewCancelReason)

	_, err = f.svc.CancelAutoRenewal(ctx, f.tenantID, "again")
	assert.ErrorIs(t, err, subscription.ErrAutoRenewAlreadyOff)

	snap, err = f.svc.ReactivateAutoRenewal(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, snap.Subscription.AutoRenew)

	_, err = f.svc.ReactivateAutoRenewal(ctx, f.tenantID)
	assert.ErrorIs(t, err, subscription.ErrAutoRenewAlreadyOn)

	_, err = f.svc.ScheduleDowngrade(ctx, f.tenantID, "leaving")
	require.NoError(t, err)
	_, err = f.svc.ReactivateAutoRenewal(ctx, f.tenantID)
	assert.ErrorIs(t, err, subscription.ErrDowngradePending)
}

func TestService_DeleteSelected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("exact selection resolves the overage", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)
		ids := f.inventory

		sel := limits.Selection{
			BusinessIDs: []uuid.UUID{ids.businesses[1], ids.businesses[2]},
			OfferIDs: []uuid.UUID{
				ids.offers[1][0], ids.offers[1][1], ids.offers[1][2],
				ids.offers[2][0], ids.offers[2][1], ids.offers[2][2],
			},
		}
		snap, err := f.svc.DeleteSelected(ctx, f.tenantID, sel)
		require.NoError(t, err)
		assert.Equal(t, limits.Counts{Businesses: 1, Offers: 3}, snap.Counts)
		assert.False(t, snap.Blocked())
		assert.Equal(t, ids.businesses[0], snap.Inventory.Businesses[0].ID)
	})

	t.Run("selected offers of other businesses go too", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)
		ids := f.inventory

		sel := limits.Selection{
			BusinessIDs: []uuid.UUID{ids.businesses[1], ids.businesses[2]},
			OfferIDs: []uuid.UUID{
				ids.offers[0][0], ids.offers[0][1], ids.offers[0][2],
				ids.offers[1][0], ids.offers[1][1], ids.offers[1][2],
			},
		}
		snap, err := f.svc.DeleteSelected(ctx, f.tenantID, sel)
		require.NoError(t, err)
		assert.Equal(t, limits.Counts{Businesses: 1, Offers: 0}, snap.Counts)
		assert.False(t, snap.Blocked())
	})

	t.Run("wrong size deletes nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)

		sel := limits.Selection{BusinessIDs: []uuid.UUID{f.inventory.businesses[1]}}
		_, err := f.svc.DeleteSelected(ctx, f.tenantID, sel)
		assert.ErrorIs(t, err, limits.ErrInvalidSelection)
		assert.ErrorIs(t, err, limits.ErrSelectionSize)
		assert.True(t, billing.IsValidation(err))

		counts, err := f.resources.CountResources(ctx, f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, limits.Counts{Businesses: 3, Offers: 9}, counts)
	})

	t.Run("foreign ids are rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)
		ids := f.inventory

		sel := limits.Selection{
			BusinessIDs: []uuid.UUID{ids.businesses[1], uuid.New()},
			OfferIDs: []uuid.UUID{
				ids.offers[1][0], ids.offers[1][1], ids.offers[1][2],
				ids.offers[2][0], ids.offers[2][1], ids.offers[2][2],
			},
		}
		_, err := f.svc.DeleteSelected(ctx, f.tenantID, sel)
		assert.ErrorIs(t, err, limits.ErrNotOwned)
	})

	t.Run("nothing to enforce", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), true)

		_, err := f.svc.DeleteSelected(ctx, f.tenantID, limits.Selection{})
		assert.ErrorIs(t, err, billing.ErrNothingToEnforce)
		assert.True(t, billing.IsConflict(err))
	})
}

func TestService_UpgradePlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("upgrade clears enforcement", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumLapsed(), true)

		snap, err := f.svc.UpgradePlan(ctx, f.tenantID, subscription.PremiumPlanID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPremiumActive, snap.Classification.Status)
		assert.False(t, snap.Blocked())
		assert.True(t, snap.Subscription.AutoRenew)
		assert.False(t, snap.Subscription.DowngradeScheduled)
		assert.Nil(t, snap.Subscription.DowngradeReason)
		require.NotNil(t, snap.Subscription.EndDate)
		assert.Equal(t, now.AddDate(0, 1, 0), *snap.Subscription.EndDate)
	})

	t.Run("activates a tenant without a record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, false)

		snap, err := f.svc.UpgradePlan(ctx, f.tenantID, subscription.FreePlanID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusFreeActive, snap.Classification.Status)
		assert.False(t, snap.Subscription.AutoRenew)
		assert.Equal(t, now, snap.Subscription.CreatedAt)
	})

	t.Run("free to premium", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, freeActive(), false)

		snap, err := f.svc.UpgradePlan(ctx, f.tenantID, subscription.PremiumPlanID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPremiumActive, snap.Classification.Status)
		assert.Equal(t, "Premium", snap.Subscription.PlanName)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			sub    *subscription.Subscription
			planID string
			err    error
		}{
			{"unknown plan", premiumActive(), "9", subscription.ErrPlanNotFound},
			{"same plan", premiumActive(), subscription.PremiumPlanID, billing.ErrAlreadyOnPlan},
			{"same free plan", freeActive(), subscription.FreePlanID, billing.ErrAlreadyOnPlan},
			{"lower limits", premiumActive(), subscription.FreePlanID, billing.ErrNotAnUpgrade},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				f := newFixture(t, tt.sub, false)
				_, err := f.svc.UpgradePlan(ctx, f.tenantID, tt.planID)
				assert.ErrorIs(t, err, tt.err)
				assert.Zero(t, f.store.saveCount())
			})
		}
	})
}

func TestService_CanCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, freeActive(), false)
	_, inv := newInventory()
	inv.Businesses = inv.Businesses[:1]
	inv.Offers = inv.Offers[:2]
	f.resources.Put(f.tenantID, inv)

	assert.ErrorIs(t, f.svc.CanCreate(ctx, f.tenantID, subscription.ResourceBusinesses), limits.ErrLimitExceeded)
	assert.NoError(t, f.svc.CanCreate(ctx, f.tenantID, subscription.ResourceOffers))
	assert.ErrorIs(t, f.svc.CanCreate(ctx, f.tenantID, "reviews"), limits.ErrInvalidResource)

	lapsed := newFixture(t, premiumLapsed(), false)
	assert.ErrorIs(t, lapsed.svc.CanCreate(ctx, lapsed.tenantID, subscription.ResourceOffers), limits.ErrLimitExceeded)
}

func TestService_Lock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("held lock fails fast", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)

		release, ok, err := f.locker.TryAcquire(ctx, "billing:"+f.tenantID.String(), time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.svc.CancelAutoRenewal(ctx, f.tenantID, "busy")
		assert.ErrorIs(t, err, billing.ErrOperationInFlight)

		release()
		_, err = f.svc.CancelAutoRenewal(ctx, f.tenantID, "free now")
		assert.NoError(t, err)
	})

	t.Run("concurrent schedules write once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.ScheduleDowngrade(ctx, f.tenantID, "double click")
				if err != nil {
					assert.ErrorIs(t, err, billing.ErrOperationInFlight)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, f.store.saveCount())
		stored := f.store.get(f.tenantID)
		assert.True(t, stored.DowngradeScheduled)
		assert.False(t, stored.AutoRenew)
	})

	t.Run("redis locker", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		f := newFixture(t, premiumActive(), false)
		svc := billing.NewService(
			subscription.DefaultCatalog(),
			f.store,
			limits.NewTracker(f.resources),
			f.resources,
			redis.NewLocker(client, redis.WithKeyPrefix("bizdir:lock:")),
			billing.WithClock(clock),
		)

		res, err := svc.ScheduleDowngrade(ctx, f.tenantID, "moving")
		require.NoError(t, err)
		assert.Equal(t, 28, res.Schedule.DaysRemaining)
		assert.False(t, mr.Exists("bizdir:lock:billing:"+f.tenantID.String()), "lock released after the call")
	})

	t.Run("locker failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, premiumActive(), false)
		svc := billing.NewService(
			subscription.DefaultCatalog(),
			f.store,
			limits.NewTracker(f.resources),
			f.resources,
			failingLocker{},
		)
		_, err := svc.ReactivateAutoRenewal(ctx, f.tenantID)
		assert.ErrorIs(t, err, billing.ErrLockUnavailable)
	})
}

func TestNewService_Panics(t *testing.T) {
	t.Parallel()
	resources := limits.NewMemoryStore()
	assert.Panics(t, func() {
		billing.NewService(nil, newMemStore(), limits.NewTracker(resources), resources, billing.NewMemoryLocker())
	})
	assert.Panics(t, func() {
		billing.NewService(subscription.DefaultCatalog(), newMemStore(), limits.NewTracker(resources), resources, nil)
	})
}

type failingLocker struct{}

func (failingLocker) TryAcquire(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, errors.New("redis: connection refused")
}
