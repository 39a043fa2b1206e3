// Package subscription holds the plan catalog and the subscription lifecycle
// rules of the business directory: which status a billing record is in, what
// that status entitles the tenant to, and how a downgrade or an auto-renewal
// change moves the record from one state to the next.
//
// Everything here is a pure function over a snapshot of data. Persistence,
// locking and transport belong to callers (see svc/billing); this package
// never performs I/O apart from the optional YAML plan source.
//
// # Plans
//
// A Catalog is built once from a PlansListSource and never mutated. The
// default catalog carries two tiers:
//
//	Free    ("1")  1 business, 3 offers, no auto-renewal
//	Premium ("2")  3 businesses, 9 offers, monthly, auto-renewal
//
// Plans can be loaded from YAML instead:
//
//	src, err := subscription.NewYAMLFileSource("plans.yaml")
//	catalog, err := subscription.LoadCatalog(ctx, src)
//
// # Classification
//
// Classify turns a raw record into one of six statuses. The rules are ordered
// and the first match wins; a payment failure always surfaces first:
//
//	status := subscription.Classify(sub, time.Now())
//	quota := catalog.Entitlements(status)
//
// Malformed dates coming off the wire are parsed by ParseDate into a value in
// the distant past, so a broken record classifies as expired rather than
// active.
//
// # Lifecycle
//
// ScheduleDowngrade, CancelScheduledDowngrade, CancelAutoRenewal and
// ReactivateAutoRenewal are transitions of one state machine
// (free, renewing, not_renewing, downgrade_scheduled). Each returns a modified
// copy of the record and never touches the input. Every result is checked by
// Subscription.Validate, so a record with a scheduled downgrade and auto-renew
// switched on is never produced.
//
//	next, schedule, err := subscription.ScheduleDowngrade(sub, "too_expensive", now)
//	switch {
//	case errors.Is(err, subscription.ErrAlreadyScheduled):
//	    // informational: schedule describes the pending downgrade
//	case err != nil:
//	    return err
//	}
//
// State conflicts (ErrAlreadyScheduled, ErrNoDowngradeScheduled, ErrFreePlan,
// ...) can be told apart from validation failures with IsStateConflict and
// IsValidation.
package subscription
