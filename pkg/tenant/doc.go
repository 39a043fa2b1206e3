// Package tenant carries the identity of the tenant a request acts for.
//
// Authentication is handled in front of the service; by the time a request
// arrives its tenant is named in headers. Middleware resolves it once and
// stores a *Tenant in the request context, and every billing operation takes
// it from there instead of reading ambient session state:
//
//	r.Use(tenant.Middleware(tenant.NewHeaderResolver()))
//	r.Use(tenant.RequireTenant(nil))
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//	    t := tenant.MustFromContext(r.Context())
//	    _ = t.ID
//	}
//
// LoggerExtractor adds the tenant ID to every log record written with a
// request context.
package tenant
