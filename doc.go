// Package bizdir is the subscription state engine of a multi-tenant business
// directory. Tenants list businesses, publish offers, and pay for a plan that
// caps how many of each they may operate.
//
// The decision logic lives in pure packages:
//
//   - pkg/subscription classifies a raw billing record into one status,
//     maps statuses to entitlements, and runs the downgrade and auto-renewal
//     lifecycle.
//   - pkg/limits measures usage, builds the enforcement request when usage
//     exceeds the target plan, and validates the tenant's deletion selection.
//
// svc/billing orchestrates them against the persistence collaborators under a
// per-tenant mutation lock and always returns a freshly re-classified
// snapshot. modules/billing exposes the service over HTTP with chi, and
// cmd/bizdir wires PostgreSQL, Redis, configuration and logging together.
//
// Basic usage without any infrastructure:
//
//	catalog := subscription.DefaultCatalog()
//	status := subscription.Classify(sub, time.Now())
//	quota := catalog.Entitlements(status)
//
//	req := limits.Evaluate(counts, catalog.TargetPlan(sub, time.Now()))
//	if req != nil {
//		// the tenant must delete req.BusinessesToRemove businesses
//		// and req.OffersToRemove offers, or upgrade
//	}
package bizdir
