package subscription

// Well-known plan identifiers of the default catalog.
const (
	FreePlanID    = "1"
	PremiumPlanID = "2"
)

// Status is the semantic state derived from a subscription record by Classify.
type Status string

const (
	StatusPremiumActive      Status = "premium_active"
	StatusPremiumGracePeriod Status = "premium_grace_period"
	StatusPremiumExpired     Status = "premium_expired"
	StatusFreeActive         Status = "free_active"
	StatusPaymentFailed      Status = "payment_failed"
	StatusNonActivated       Status = "non_activated"
)

// IsPremium reports whether the status carries premium entitlements.
func (s Status) IsPremium() bool {
	return s == StatusPremiumActive || s == StatusPremiumGracePeriod
}

// CanCreate reports whether the status allows creating any resource at all.
// Expired, failed and non-activated tenants keep what they have but cannot add.
func (s Status) CanCreate() bool {
	return s.IsPremium() || s == StatusFreeActive
}

// BillingStatus is the raw status stored on the record by the billing backend.
type BillingStatus string

const (
	BillingActive         BillingStatus = "active"
	BillingInactive       BillingStatus = "inactive"
	BillingCancelled      BillingStatus = "cancelled"
	BillingPendingRenewal BillingStatus = "pending_renewal"
	BillingPaymentFailed  BillingStatus = "payment_failed"
)

// Money represents an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `yaml:"amount"`   // e.g. cents
	Currency string `yaml:"currency"` // ISO 4217
}

// BillingInterval is the length of one paid period.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // free plans
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Resource is a countable tenant resource limited by the plan.
type Resource string

const (
	ResourceBusinesses Resource = "businesses"
	ResourceOffers     Resource = "offers"
)

// Quota is the number of businesses and offers a tenant may operate.
type Quota struct {
	MaxBusinesses int
	MaxOffers     int
}

// Limit returns the quota for a single resource.
func (q Quota) Limit(res Resource) int {
	switch res {
	case ResourceBusinesses:
		return q.MaxBusinesses
	case ResourceOffers:
		return q.MaxOffers
	default:
		return 0
	}
}
