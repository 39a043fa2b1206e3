package subscription

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Plan describes a subscription tier and the resources it allows.
type Plan struct {
	ID                   string          `yaml:"id"`
	Name                 string          `yaml:"name"`
	Description          string          `yaml:"description"`
	MaxBusinesses        int             `yaml:"max_businesses"`
	MaxOffers            int             `yaml:"max_offers"`
	MonthlyPrice         Money           `yaml:"monthly_price"`
	AutoRenewalAvailable bool            `yaml:"auto_renewal_available"`
	Interval             BillingInterval `yaml:"interval"`
}

// Quota returns the resource quota granted by the plan.
func (p Plan) Quota() Quota {
	return Quota{MaxBusinesses: p.MaxBusinesses, MaxOffers: p.MaxOffers}
}

// IsFree reports whether the plan is billed at all.
func (p Plan) IsFree() bool {
	return p.Interval == BillingIntervalNone || p.Interval == ""
}

// NextCycle returns the end of one billing period starting at from.
// Free plans have no period, so from is returned unchanged.
func (p Plan) NextCycle(from time.Time) time.Time {
	switch p.Interval {
	case BillingIntervalMonthly:
		return from.AddDate(0, 1, 0)
	case BillingIntervalAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// Covers reports whether the plan quota fits the given usage.
func (p Plan) Covers(businesses, offers int) bool {
	return businesses <= p.MaxBusinesses && offers <= p.MaxOffers
}

// DefaultPlans is the catalog shipped with the application.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:            FreePlanID,
			Name:          "Free",
			Description:   "One listed business with a handful of offers",
			MaxBusinesses: 1,
			MaxOffers:     3,
			Interval:      BillingIntervalNone,
		},
		{
			ID:                   PremiumPlanID,
			Name:                 "Premium",
			Description:          "Up to three businesses and nine offers",
			MaxBusinesses:        3,
			MaxOffers:            9,
			MonthlyPrice:         Money{Amount: 150000, Currency: "LKR"},
			AutoRenewalAvailable: true,
			Interval:             BillingIntervalMonthly,
		},
	}
}

// Catalog is the immutable set of plans known to the application.
// Plans are values, so lookups hand out copies and callers cannot mutate it.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog validates the plans and builds a catalog from them.
func NewCatalog(plans map[string]Plan) (*Catalog, error) {
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	return &Catalog{plans: maps.Clone(plans)}, nil
}

// LoadCatalog loads plans from src and builds a catalog.
func LoadCatalog(ctx context.Context, src PlansListSource) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return NewCatalog(plans)
}

// DefaultCatalog returns the catalog built from DefaultPlans.
func DefaultCatalog() *Catalog {
	plans := make(map[string]Plan)
	for _, p := range DefaultPlans() {
		plans[p.ID] = p
	}
	c, err := NewCatalog(plans)
	if err != nil {
		panic("subscription: default catalog is invalid: " + err.Error())
	}
	return c
}

// Plan looks up a plan by ID.
func (c *Catalog) Plan(id string) (Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// Free returns the free tier.
func (c *Catalog) Free() Plan { return c.plans[FreePlanID] }

// Premium returns the premium tier.
func (c *Catalog) Premium() Plan { return c.plans[PremiumPlanID] }

// Plans returns all plans ordered by ID.
func (c *Catalog) Plans() []Plan {
	out := slices.Collect(maps.Values(c.plans))
	slices.SortFunc(out, func(a, b Plan) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Entitlements maps a status to the quota it grants.
// Statuses without entitlements get a zero quota: nothing new can be created,
// but nothing is force-deleted by this rule alone.
func (c *Catalog) Entitlements(status Status) Quota {
	switch {
	case status.IsPremium():
		return c.Premium().Quota()
	case status == StatusFreeActive:
		return c.Free().Quota()
	default:
		return Quota{}
	}
}

// TargetPlan returns the plan a tenant's usage must fit: the premium plan
// while premium entitlements last, the free plan otherwise.
func (c *Catalog) TargetPlan(sub *Subscription, now time.Time) Plan {
	if Classify(sub, now).IsPremium() {
		if p, ok := c.plans[sub.PlanID]; ok {
			return p
		}
		return c.Premium()
	}
	return c.Free()
}

// PlanComparison describes what changes when moving from one plan to another.
type PlanComparison struct {
	From            string
	To              string
	IncreasedLimits map[Resource]ResourceChange
	DecreasedLimits map[Resource]ResourceChange
}

// ResourceChange is the before/after limit of a resource.
type ResourceChange struct {
	From int
	To   int
}

// IsDowngrade reports whether any limit shrinks.
func (c *PlanComparison) IsDowngrade() bool {
	return len(c.DecreasedLimits) > 0
}

// ComparePlans returns the limit differences between current and target.
func ComparePlans(current, target Plan) *PlanComparison {
	diff := &PlanComparison{
		From:            current.ID,
		To:              target.ID,
		IncreasedLimits: make(map[Resource]ResourceChange),
		DecreasedLimits: make(map[Resource]ResourceChange),
	}
	for _, res := range []Resource{ResourceBusinesses, ResourceOffers} {
		from, to := current.Quota().Limit(res), target.Quota().Limit(res)
		switch {
		case to > from:
			diff.IncreasedLimits[res] = ResourceChange{From: from, To: to}
		case to < from:
			diff.DecreasedLimits[res] = ResourceChange{From: from, To: to}
		}
	}
	return diff
}

func validatePlans(plans map[string]Plan) error {
	for _, id := range []string{FreePlanID, PremiumPlanID} {
		if _, ok := plans[id]; !ok {
			return errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("plan %q is missing", id))
		}
	}

	for id, p := range plans {
		if p.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, p.ID))
		}
		if p.MaxBusinesses < 0 || p.MaxOffers < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has a negative quota", id))
		}
		if p.IsFree() && p.AutoRenewalAvailable {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("free plan %s cannot offer auto-renewal", id))
		}
	}

	if !plans[FreePlanID].IsFree() {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan 1 must be free"))
	}
	if plans[PremiumPlanID].IsFree() {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan 2 must be billed"))
	}
	return nil
}
