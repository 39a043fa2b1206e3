package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/logger"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// Service orchestrates billing state changes for one tenant at a time.
// Every mutation holds the tenant lock, writes through the store and returns
// a freshly fetched and re-classified Snapshot.
type Service interface {
	Snapshot(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error)

	ScheduleDowngrade(ctx context.Context, tenantID uuid.UUID, reason string) (*DowngradeResult, error)
	CancelScheduledDowngrade(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error)
	CancelAutoRenewal(ctx context.Context, tenantID uuid.UUID, reason string) (*Snapshot, error)
	ReactivateAutoRenewal(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error)

	DeleteSelected(ctx context.Context, tenantID uuid.UUID, sel limits.Selection) (*Snapshot, error)
	UpgradePlan(ctx context.Context, tenantID uuid.UUID, planID string) (*Snapshot, error)

	CanCreate(ctx context.Context, tenantID uuid.UUID, res subscription.Resource) error
	Catalog() *subscription.Catalog
}

// ResourceStore deletes a tenant's businesses and offers. Deleting a
// business deletes its offers too. Implementations must scope deletes to
// tenantID.
type ResourceStore interface {
	DeleteResources(ctx context.Context, tenantID uuid.UUID, businessIDs, offerIDs []uuid.UUID) error
}

type service struct {
	catalog   *subscription.Catalog
	store     subscription.Store
	tracker   *limits.Tracker
	resources ResourceStore
	locker    Locker

	log     *slog.Logger
	now     func() time.Time
	lockTTL time.Duration
}

// NewService creates a Service. Panics if a dependency is nil.
func NewService(
	catalog *subscription.Catalog,
	store subscription.Store,
	tracker *limits.Tracker,
	resources ResourceStore,
	locker Locker,
	opts ...ServiceOption,
) Service {
	switch {
	case catalog == nil:
		panic("billing: catalog is required")
	case store == nil:
		panic("billing: subscription store is required")
	case tracker == nil:
		panic("billing: tracker is required")
	case resources == nil:
		panic("billing: resource store is required")
	case locker == nil:
		panic("billing: locker is required")
	}

	s := &service{
		catalog:   catalog,
		store:     store,
		tracker:   tracker,
		resources: resources,
		locker:    locker,
		log:       logger.Discard(),
		now:       time.Now,
		lockTTL:   DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Catalog() *subscription.Catalog { return s.catalog }

// Snapshot fetches the subscription and usage and derives the current state.
func (s *service) Snapshot(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	sub, err := s.load(ctx, tenantID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, err
	}

	// Counts come from the same read as the lists, so the enforcement
	// request and the ownership check see one view of the tenant.
	inv, err := s.tracker.Inventory(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	counts := inv.Counts()

	snap := derive(s.catalog, sub, counts, inv, s.now().UTC())
	if snap.Blocked() {
		s.log.InfoContext(ctx, "usage exceeds target plan",
			logger.TenantID(tenantID),
			logger.Status(snap.Classification.Status),
			logger.PlanID(snap.Enforcement.TargetPlanID),
			logger.Counts(counts.Businesses, counts.Offers),
		)
	}
	return snap, nil
}

func (s *service) ScheduleDowngrade(ctx context.Context, tenantID uuid.UUID, reason string) (*DowngradeResult, error) {
	var schedule subscription.DowngradeSchedule
	var notice string

	snap, err := s.mutate(ctx, tenantID, subscription.OpScheduleDowngrade,
		func(sub *subscription.Subscription, now time.Time) (*subscription.Subscription, error) {
			next, sched, err := subscription.ScheduleDowngrade(sub, reason, now)
			schedule = sched
			if errors.Is(err, subscription.ErrAlreadyScheduled) {
				notice = NoticeAlreadyScheduled
				return nil, nil
			}
			return next, err
		})
	if err != nil {
		return nil, err
	}
	return &DowngradeResult{Snapshot: snap, Schedule: schedule, Notice: notice}, nil
}

func (s *service) CancelScheduledDowngrade(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	return s.mutate(ctx, tenantID, subscription.OpCancelDowngrade,
		func(sub *subscription.Subscription, now time.Time) (*subscription.Subscription, error) {
			return subscription.CancelScheduledDowngrade(sub, now)
		})
}

func (s *service) CancelAutoRenewal(ctx context.Context, tenantID uuid.UUID, reason string) (*Snapshot, error) {
	return s.mutate(ctx, tenantID, subscription.OpCancelAutoRenewal,
		func(sub *subscription.Subscription, now time.Time) (*subscription.Subscription, error) {
			return subscription.CancelAutoRenewal(sub, reason, now)
		})
}

func (s *service) ReactivateAutoRenewal(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	return s.mutate(ctx, tenantID, subscription.OpReactivateAutoRenewal,
		func(sub *subscription.Subscription, now time.Time) (*subscription.Subscription, error) {
			return subscription.ReactivateAutoRenewal(sub, now)
		})
}

// DeleteSelected deletes the selected resources when they resolve the
// pending overage exactly. The selection is checked against a fresh
// inventory under the tenant lock; the returned snapshot carries the
// residual enforcement request, nil once usage fits.
func (s *service) DeleteSelected(ctx context.Context, tenantID uuid.UUID, sel limits.Selection) (*Snapshot, error) {
	release, err := s.lock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	before, err := s.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !before.Blocked() {
		return nil, ErrNothingToEnforce
	}

	if err := limits.ValidateSelection(before.Enforcement, sel, before.Inventory).Err(); err != nil {
		return nil, err
	}

	if err := s.resources.DeleteResources(ctx, tenantID, sel.BusinessIDs, sel.OfferIDs); err != nil {
		return nil, errors.Join(ErrFailedToDeleteResources, err)
	}

	after, err := s.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "selected resources deleted",
		logger.TenantID(tenantID),
		slog.Int("businesses", len(sel.BusinessIDs)),
		slog.Int("offers", len(sel.OfferIDs)),
		logger.Counts(after.Counts.Businesses, after.Counts.Offers),
		slog.Bool("resolved", !after.Blocked()),
	)
	return after, nil
}

// UpgradePlan moves the tenant onto planID and starts a new billing period.
// Any pending downgrade is dropped, and enforcement is re-evaluated against
// the new quota. Moving to a plan with lower limits than the one the tenant
// is entitled to is rejected with ErrNotAnUpgrade.
func (s *service) UpgradePlan(ctx context.Context, tenantID uuid.UUID, planID string) (*Snapshot, error) {
	target, ok := s.catalog.Plan(planID)
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}

	release, err := s.lock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	sub, err := s.load(ctx, tenantID)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		sub = &subscription.Subscription{TenantID: tenantID, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	status := subscription.Classify(sub, now)
	if sub.PlanID == planID && status.CanCreate() {
		return nil, ErrAlreadyOnPlan
	}
	current := s.catalog.TargetPlan(sub, now)
	diff := subscription.ComparePlans(current, target)
	if diff.IsDowngrade() {
		return nil, ErrNotAnUpgrade
	}

	next := activate(sub, target, now)
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "plan changed",
		logger.TenantID(tenantID),
		slog.String("from", current.ID),
		logger.PlanID(target.ID),
		logger.Status(status),
		slog.Int("increased_limits", len(diff.IncreasedLimits)),
	)
	return s.Snapshot(ctx, tenantID)
}

// activate returns sub switched to plan with a fresh active period.
func activate(sub *subscription.Subscription, plan subscription.Plan, now time.Time) *subscription.Subscription {
	next := sub.Clone()
	next.PlanID = plan.ID
	next.PlanName = plan.Name
	next.Status = subscription.BillingActive
	next.PaymentFailure = false
	next.DowngradeScheduled = false
	next.DowngradeEffectiveDate = nil
	next.DowngradeReason = nil
	next.AutoRenewCancelReason = nil
	next.UpdatedAt = now

	if plan.IsFree() {
		next.AutoRenew = false
		next.EndDate = nil
		next.NextBillingDate = nil
		return next
	}
	end := plan.NextCycle(now)
	next.AutoRenew = plan.AutoRenewalAvailable
	next.EndDate = &end
	next.NextBillingDate = &end
	return next
}

// CanCreate checks whether the tenant may add one more resource of the given kind.
func (s *service) CanCreate(ctx context.Context, tenantID uuid.UUID, res subscription.Resource) error {
	sub, err := s.load(ctx, tenantID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return err
	}
	counts, err := s.tracker.Measure(ctx, tenantID)
	if err != nil {
		return err
	}
	quota := s.catalog.Entitlements(subscription.Classify(sub, s.now().UTC()))
	return limits.CanCreate(counts, quota, res)
}

type mutation func(sub *subscription.Subscription, now time.Time) (*subscription.Subscription, error)

// mutate runs fn on the current record under the tenant lock and persists
// the result. A nil record from fn means there is nothing to write.
func (s *service) mutate(ctx context.Context, tenantID uuid.UUID, op subscription.Operation, fn mutation) (*Snapshot, error) {
	release, err := s.lock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	sub, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	next, err := fn(sub, s.now().UTC())
	if err != nil {
		level := slog.LevelError
		if subscription.IsStateConflict(err) || subscription.IsValidation(err) {
			level = slog.LevelInfo
		}
		s.log.Log(ctx, level, "billing operation rejected",
			logger.TenantID(tenantID),
			logger.Operation(op),
			logger.Error(err),
		)
		return nil, err
	}

	if next != nil {
		if err := s.save(ctx, next); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "billing operation applied",
			logger.TenantID(tenantID),
			logger.Operation(op),
			slog.Bool("auto_renew", next.AutoRenew),
			slog.Bool("downgrade_scheduled", next.DowngradeScheduled),
		)
	}
	return s.Snapshot(ctx, tenantID)
}

func (s *service) lock(ctx context.Context, tenantID uuid.UUID) (func(), error) {
	release, ok, err := s.locker.TryAcquire(ctx, lockKey(tenantID), s.lockTTL)
	if err != nil {
		return nil, errors.Join(ErrLockUnavailable, err)
	}
	if !ok {
		return nil, ErrOperationInFlight
	}
	return release, nil
}

func (s *service) load(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.store.Get(ctx, tenantID)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return nil, err
	case err != nil:
		return nil, errors.Join(ErrFailedToLoadSubscription, err)
	}
	return sub, nil
}

func (s *service) save(ctx context.Context, sub *subscription.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return errors.Join(ErrFailedToSaveSubscription, err)
	}
	return nil
}
