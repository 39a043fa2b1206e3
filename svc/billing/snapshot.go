package billing

import (
	"slices"
	"time"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// Snapshot is the server-confirmed billing state of a tenant at FetchedAt.
// Subscription is nil for a tenant that never activated a plan.
type Snapshot struct {
	Subscription   *subscription.Subscription
	Classification subscription.Classification
	Counts         limits.Counts
	Inventory      *limits.Inventory
	Enforcement    *limits.EnforcementRequest // nil when usage fits the target plan
	FetchedAt      time.Time
}

// Blocked reports whether the tenant must resolve an overage before going on.
func (s *Snapshot) Blocked() bool {
	return s != nil && s.Enforcement != nil
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Subscription = s.Subscription.Clone()
	if s.Classification.EffectiveDate != nil {
		eff := *s.Classification.EffectiveDate
		c.Classification.EffectiveDate = &eff
	}
	if s.Inventory != nil {
		c.Inventory = &limits.Inventory{
			Businesses: slices.Clone(s.Inventory.Businesses),
			Offers:     slices.Clone(s.Inventory.Offers),
		}
	}
	if s.Enforcement != nil {
		req := *s.Enforcement
		c.Enforcement = &req
	}
	return &c
}

// Notice values attached to successful results.
const (
	NoticeAlreadyScheduled = "already_scheduled"
)

// DowngradeResult is returned by ScheduleDowngrade.
type DowngradeResult struct {
	Snapshot *Snapshot
	Schedule subscription.DowngradeSchedule
	Notice   string // NoticeAlreadyScheduled when nothing changed
}

// derive classifies sub and evaluates usage against its target plan.
func derive(catalog *subscription.Catalog, sub *subscription.Subscription, counts limits.Counts, inv *limits.Inventory, now time.Time) *Snapshot {
	cls := catalog.Classify(sub, now)
	return &Snapshot{
		Subscription:   sub,
		Classification: cls,
		Counts:         counts,
		Inventory:      inv,
		Enforcement:    limits.Evaluate(counts, cls.TargetPlan),
		FetchedAt:      now,
	}
}
