package limits

import (
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// EnforcementRequest tells the tenant how many resources must go before the
// usage fits the target plan. It exists only while usage is over quota.
type EnforcementRequest struct {
	TargetPlanID       string `json:"target_plan_id"`
	MaxBusinesses      int    `json:"max_businesses"`
	MaxOffers          int    `json:"max_offers"`
	CurrentBusinesses  int    `json:"current_businesses"`
	CurrentOffers      int    `json:"current_offers"`
	BusinessesToRemove int    `json:"businesses_to_remove"`
	OffersToRemove     int    `json:"offers_to_remove"`
}

// Evaluate compares usage with the target plan. It returns nil iff both
// counts fit the plan quota.
func Evaluate(counts Counts, target subscription.Plan) *EnforcementRequest {
	quota := target.Quota()
	if counts.Fits(quota) {
		return nil
	}
	return &EnforcementRequest{
		TargetPlanID:       target.ID,
		MaxBusinesses:      quota.MaxBusinesses,
		MaxOffers:          quota.MaxOffers,
		CurrentBusinesses:  counts.Businesses,
		CurrentOffers:      counts.Offers,
		BusinessesToRemove: max(0, counts.Businesses-quota.MaxBusinesses),
		OffersToRemove:     max(0, counts.Offers-quota.MaxOffers),
	}
}

// CanCreate checks whether one more resource of the given kind fits the quota.
func CanCreate(counts Counts, quota subscription.Quota, res subscription.Resource) error {
	switch res {
	case subscription.ResourceBusinesses, subscription.ResourceOffers:
	default:
		return ErrInvalidResource
	}
	if counts.Of(res) >= quota.Limit(res) {
		return ErrLimitExceeded
	}
	return nil
}

// Usage is the consumption of a single resource.
type Usage struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
	Percent int `json:"percent"`
}

// Report returns per-resource usage against quota.
func Report(counts Counts, quota subscription.Quota) map[subscription.Resource]Usage {
	out := make(map[subscription.Resource]Usage, 2)
	for _, res := range []subscription.Resource{subscription.ResourceBusinesses, subscription.ResourceOffers} {
		used, limit := counts.Of(res), quota.Limit(res)
		out[res] = Usage{Current: used, Limit: limit, Percent: UsagePercentage(used, limit)}
	}
	return out
}

// UsagePercentage returns used/limit as a percentage capped at 100.
// A zero limit reads as fully used.
func UsagePercentage(used, limit int) int {
	if limit <= 0 {
		return 100
	}
	return min(used*100/limit, 100)
}
