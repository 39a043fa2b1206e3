package subscription

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subscription is one tenant's billing record.
// Each tenant has exactly one; it is superseded, never deleted.
type Subscription struct {
	TenantID uuid.UUID // primary key
	PlanID   string
	PlanName string
	Status   BillingStatus

	AutoRenew       bool
	EndDate         *time.Time // end of the current paid period
	NextBillingDate *time.Time

	DowngradeScheduled     bool
	DowngradeEffectiveDate *time.Time
	DowngradeReason        *string

	AutoRenewCancelReason *string
	PaymentFailure        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Subscription) IsFree() bool    { return s.PlanID == FreePlanID }
func (s *Subscription) IsPremium() bool { return s.PlanID == PremiumPlanID }
func (s *Subscription) IsActive() bool  { return s.Status == BillingActive }

// Clone returns a deep copy so callers can mutate the result freely.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.EndDate = cloneTime(s.EndDate)
	c.NextBillingDate = cloneTime(s.NextBillingDate)
	c.DowngradeEffectiveDate = cloneTime(s.DowngradeEffectiveDate)
	c.DowngradeReason = cloneString(s.DowngradeReason)
	c.AutoRenewCancelReason = cloneString(s.AutoRenewCancelReason)
	return &c
}

// Validate checks the invariants every persisted record must hold:
// a scheduled downgrade implies auto-renew is off, and a free record carries
// neither flag. Writers must call it before saving.
func (s *Subscription) Validate() error {
	if s.DowngradeScheduled && s.AutoRenew {
		return errors.Join(ErrInvariantViolation,
			errors.New("auto-renew must be off while a downgrade is scheduled"))
	}
	if s.IsFree() && (s.DowngradeScheduled || s.AutoRenew) {
		return errors.Join(ErrInvariantViolation,
			errors.New("free plan cannot renew or schedule a downgrade"))
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func ptr[T any](v T) *T { return &v }
