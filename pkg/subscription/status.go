package subscription

import "time"

// expiryWarningWindow is how early a non-renewing premium tenant is warned.
const expiryWarningWindow = 7 * 24 * time.Hour

// Classify derives the semantic status of a record. Rules are evaluated in
// order and the first match wins. It is a pure function of its inputs.
func Classify(sub *Subscription, now time.Time) Status {
	if sub == nil || sub.PlanID == "" {
		return StatusNonActivated
	}
	if sub.PaymentFailure {
		return StatusPaymentFailed
	}

	switch sub.PlanID {
	case FreePlanID:
		if sub.Status == BillingActive {
			return StatusFreeActive
		}
	case PremiumPlanID:
		return classifyPremium(sub, now)
	}
	return StatusNonActivated
}

func classifyPremium(sub *Subscription, now time.Time) Status {
	if sub.DowngradeScheduled {
		// The grace window ends on the same date Schedule reports. Once it has
		// passed the record reads as expired until the backend commits the
		// move to the free plan.
		if EffectiveDate(sub, now).After(now) {
			return StatusPremiumGracePeriod
		}
		return StatusPremiumExpired
	}
	if sub.Status == BillingActive && (sub.EndDate == nil || sub.EndDate.After(now)) {
		return StatusPremiumActive
	}
	return StatusPremiumExpired
}

// Classification bundles everything a caller needs to render the tenant's
// billing state.
type Classification struct {
	Status        Status
	PlanID        string
	Entitlements  Quota
	TargetPlan    Plan       // plan current usage must fit
	EffectiveDate *time.Time // pending downgrade, if any
	DaysRemaining int

	ShowGraceBanner   bool
	ShowExpiryWarning bool
}

// Classify classifies sub and resolves its entitlements against the catalog.
func (c *Catalog) Classify(sub *Subscription, now time.Time) Classification {
	status := Classify(sub, now)
	out := Classification{
		Status:       status,
		Entitlements: c.Entitlements(status),
		TargetPlan:   c.TargetPlan(sub, now),
	}
	if sub == nil {
		return out
	}
	out.PlanID = sub.PlanID

	switch status {
	case StatusPremiumGracePeriod:
		eff := EffectiveDate(sub, now)
		out.EffectiveDate = &eff
		out.DaysRemaining = DaysRemaining(eff, now)
		out.ShowGraceBanner = true
	case StatusPremiumActive:
		if !sub.AutoRenew && sub.EndDate != nil {
			out.DaysRemaining = DaysRemaining(*sub.EndDate, now)
			out.ShowExpiryWarning = sub.EndDate.Sub(now) <= expiryWarningWindow
		}
	}
	return out
}
