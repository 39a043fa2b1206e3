package billing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/bizdir/handler"
	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	"github.com/dmitrymomot/bizdir/pkg/validator"
	billingsvc "github.com/dmitrymomot/bizdir/svc/billing"
)

// conflicts maps state conflicts to the code reported to the client.
// Order matters: the first match wins.
var conflicts = []struct {
	err  error
	code string
}{
	{subscription.ErrAlreadyScheduled, "already_scheduled"},
	{subscription.ErrNoDowngradeScheduled, "no_downgrade_scheduled"},
	{subscription.ErrFreePlan, "free_plan"},
	{subscription.ErrDowngradePending, "downgrade_pending"},
	{subscription.ErrAutoRenewAlreadyOff, "auto_renew_already_off"},
	{subscription.ErrAutoRenewAlreadyOn, "auto_renew_already_on"},
	{billingsvc.ErrOperationInFlight, "operation_in_flight"},
	{billingsvc.ErrNothingToEnforce, "nothing_to_enforce"},
	{billingsvc.ErrAlreadyOnPlan, "already_on_plan"},
	{billingsvc.ErrNotAnUpgrade, "not_an_upgrade"},
	{limits.ErrLimitExceeded, "limit_exceeded"},
}

var unavailable = []error{
	billingsvc.ErrLockUnavailable,
	billingsvc.ErrFailedToLoadSubscription,
	billingsvc.ErrFailedToSaveSubscription,
	billingsvc.ErrFailedToDeleteResources,
	limits.ErrFailedToCountResources,
}

// httpError translates a service error into one the handler package renders.
// The service error stays in the chain for logging.
func httpError(err error) error {
	if verr := validationError(err); verr != nil {
		return verr
	}
	for _, c := range conflicts {
		if errors.Is(err, c.err) {
			return errors.Join(handler.NewHTTPError(http.StatusConflict, c.code), err)
		}
	}
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return errors.Join(handler.NewHTTPError(http.StatusNotFound, "subscription_not_found"), err)
	}
	if errors.Is(err, limits.ErrInvalidResource) {
		return errors.Join(handler.NewHTTPError(http.StatusNotFound, "unknown_resource"), err)
	}
	for _, target := range unavailable {
		if errors.Is(err, target) {
			return errors.Join(handler.ErrServiceUnavailable, err)
		}
	}
	return err
}

func validationError(err error) error {
	verr := handler.NewValidationError()
	switch {
	case errors.Is(err, subscription.ErrReasonRequired):
		verr.Add("reason", "is required")
	case errors.Is(err, subscription.ErrReasonTooLong):
		verr.Add("reason", fmt.Sprintf("must be at most %d characters", subscription.MaxReasonLength))
	case errors.Is(err, subscription.ErrPlanNotFound):
		verr.Add("plan_id", "unknown plan")
	case errors.Is(err, limits.ErrInvalidSelection):
		for _, d := range validator.ExtractValidationErrors(err) {
			verr.Add(d.Field, d.Message)
		}
		if verr.IsEmpty() {
			verr.Add("selection", "is invalid")
		}
	default:
		return nil
	}
	return verr
}

// failure is a Response that never writes: Render hands the error back to
// Wrap so the configured ErrorHandler logs and renders it.
type failure struct{ err error }

func (f failure) Render(http.ResponseWriter, *http.Request) error { return f.err }

func fail(err error) handler.Response {
	return failure{err: httpError(err)}
}
