// Package limits measures a tenant's businesses and offers and decides what
// has to go when usage exceeds the plan quota.
//
// A Tracker reads exact counts from a CountSource on every call. Evaluate
// compares them with the target plan and returns an EnforcementRequest only
// when something must be removed:
//
//	counts, err := tracker.Measure(ctx, tenantID)
//	if req := limits.Evaluate(counts, catalog.TargetPlan(sub, now)); req != nil {
//	    // the shell must block until the tenant resolves req or upgrades
//	}
//
// ValidateSelection accepts a deletion only when it removes exactly the
// requested number of businesses and offers, all owned by the tenant.
// Deleting a business cascades to its offers; Project predicts the result.
// After the deletion the usage is measured again and passed to Evaluate;
// enforcement is resolved only once Evaluate returns nil.
package limits
