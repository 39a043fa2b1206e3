package subscription

import "time"

// CancelAutoRenewal returns a copy of sub that will not renew. Premium
// entitlements last until EndDate; no downgrade is scheduled.
func CancelAutoRenewal(sub *Subscription, reason string, now time.Time) (*Subscription, error) {
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	return transition(sub, OpCancelAutoRenewal, reason, now)
}

// ReactivateAutoRenewal returns a copy of sub with auto-renewal switched back on.
func ReactivateAutoRenewal(sub *Subscription, now time.Time) (*Subscription, error) {
	return transition(sub, OpReactivateAutoRenewal, "", now)
}
