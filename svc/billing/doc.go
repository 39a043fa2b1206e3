// Package billing orchestrates the subscription state engine of a tenant.
//
// Service is the server side. Each mutation takes a per-tenant lock through
// a Locker, applies one of the pure transitions from pkg/subscription or a
// selection from pkg/limits, persists the result and returns a Snapshot that
// was fetched and classified again after the write. A second mutation of the
// same tenant while the first one runs fails fast with ErrOperationInFlight.
//
// State and Session are the caller side. State keeps the last confirmed
// Snapshot plus at most one optimistic change; Reconcile replaces both with
// what the server returned and Rollback drops the optimistic change after a
// failed call. Session wires the two together for one tenant:
//
//	sess := billing.NewSession(svc, tenantID)
//	if _, err := sess.Refresh(ctx); err != nil {
//		return err
//	}
//	res, err := sess.ScheduleDowngrade(ctx, "switching providers")
//	switch {
//	case billing.IsValidation(err):
//		// re-prompt, the server was not contacted
//	case billing.IsConflict(err):
//		// informational, the state was re-fetched
//	case err != nil:
//		// transport failure, the view is back on the confirmed snapshot
//	}
package billing
