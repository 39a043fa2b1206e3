package billing

import (
	"errors"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

var (
	// ErrOperationInFlight means another mutation of the same tenant is
	// still running. Callers should wait for it and re-fetch, not retry blindly.
	ErrOperationInFlight = errors.New("another billing operation is in progress")
	ErrLockUnavailable   = errors.New("failed to acquire billing lock")

	ErrNothingToEnforce = errors.New("usage already fits the plan")
	ErrAlreadyOnPlan    = errors.New("tenant is already on this plan")
	ErrNotAnUpgrade     = errors.New("target plan has lower limits than the current plan")

	ErrFailedToLoadSubscription = errors.New("failed to load subscription")
	ErrFailedToSaveSubscription = errors.New("failed to save subscription")
	ErrFailedToDeleteResources  = errors.New("failed to delete resources")

	ErrUnknownOperation = errors.New("unknown billing operation")
)

// ErrNotLoaded is returned by State.Begin before the first Reconcile.
var ErrNotLoaded = errors.New("billing state not loaded")

// IsConflict reports whether err means the server-side record is not in a
// state that allows the operation. The requested end state may already hold.
func IsConflict(err error) bool {
	return subscription.IsStateConflict(err) ||
		errors.Is(err, ErrNothingToEnforce) ||
		errors.Is(err, ErrAlreadyOnPlan) ||
		errors.Is(err, ErrNotAnUpgrade)
}

// IsValidation reports whether err was caused by input the caller can fix.
func IsValidation(err error) bool {
	return subscription.IsValidation(err) ||
		errors.Is(err, limits.ErrInvalidSelection) ||
		errors.Is(err, subscription.ErrPlanNotFound)
}
