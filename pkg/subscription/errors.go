package subscription

import "errors"

var (
	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")

	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvariantViolation   = errors.New("subscription invariant violated")

	// Validation errors: the caller can fix the input and retry.
	ErrReasonRequired = errors.New("reason is required")
	ErrReasonTooLong  = errors.New("reason is too long")

	// State conflicts: the requested end state may already hold.
	ErrAlreadyScheduled     = errors.New("downgrade already scheduled")
	ErrNoDowngradeScheduled = errors.New("no downgrade scheduled")
	ErrFreePlan             = errors.New("operation not available on the free plan")
	ErrDowngradePending     = errors.New("operation not available while a downgrade is scheduled")
	ErrAutoRenewAlreadyOff  = errors.New("auto-renewal is already disabled")
	ErrAutoRenewAlreadyOn   = errors.New("auto-renewal is already enabled")
)

var stateConflicts = []error{
	ErrAlreadyScheduled,
	ErrNoDowngradeScheduled,
	ErrFreePlan,
	ErrDowngradePending,
	ErrAutoRenewAlreadyOff,
	ErrAutoRenewAlreadyOn,
}

// IsStateConflict reports whether err means the record is not in a state that
// allows the operation. Such errors are informational rather than fatal.
func IsStateConflict(err error) bool {
	for _, target := range stateConflicts {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrReasonRequired) || errors.Is(err, ErrReasonTooLong)
}
