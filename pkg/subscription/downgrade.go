package subscription

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DowngradeSchedule describes a pending move to the free plan.
type DowngradeSchedule struct {
	EffectiveDate time.Time
	DaysRemaining int
	Reason        string
}

// EffectiveDate resolves when a downgrade of sub takes effect. Sources are
// tried in a fixed order: an already scheduled date, the end of the paid
// period, the next billing date, and finally one month from now.
func EffectiveDate(sub *Subscription, now time.Time) time.Time {
	switch {
	case sub.DowngradeEffectiveDate != nil:
		return *sub.DowngradeEffectiveDate
	case sub.EndDate != nil:
		return *sub.EndDate
	case sub.NextBillingDate != nil:
		return *sub.NextBillingDate
	default:
		return now.AddDate(0, 1, 0)
	}
}

// DaysRemaining returns the whole days left until effective, rounded up.
// It never goes below zero.
func DaysRemaining(effective, now time.Time) int {
	d := effective.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// Schedule returns the pending downgrade of sub, if any.
func Schedule(sub *Subscription, now time.Time) (DowngradeSchedule, bool) {
	if sub == nil || !sub.DowngradeScheduled {
		return DowngradeSchedule{}, false
	}
	eff := EffectiveDate(sub, now)
	out := DowngradeSchedule{EffectiveDate: eff, DaysRemaining: DaysRemaining(eff, now)}
	if sub.DowngradeReason != nil {
		out.Reason = *sub.DowngradeReason
	}
	return out, true
}

// ScheduleDowngrade returns a copy of sub with a downgrade to the free plan
// scheduled at the end of the current period. Auto-renewal is switched off.
//
// If a downgrade is already pending the record is returned unchanged together
// with the existing schedule and ErrAlreadyScheduled.
func ScheduleDowngrade(sub *Subscription, reason string, now time.Time) (*Subscription, DowngradeSchedule, error) {
	if err := validateReason(reason); err != nil {
		return nil, DowngradeSchedule{}, err
	}
	if existing, ok := Schedule(sub, now); ok && !sub.IsFree() {
		return sub.Clone(), existing, ErrAlreadyScheduled
	}

	next, err := transition(sub, OpScheduleDowngrade, reason, now)
	if err != nil {
		return nil, DowngradeSchedule{}, err
	}
	schedule, _ := Schedule(next, now)
	return next, schedule, nil
}

// CancelScheduledDowngrade returns a copy of sub with the pending downgrade
// reverted. Auto-renewal is restored.
func CancelScheduledDowngrade(sub *Subscription, now time.Time) (*Subscription, error) {
	return transition(sub, OpCancelDowngrade, "", now)
}
