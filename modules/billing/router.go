package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures what the application router serves.
// Each field is optional and is only mounted if provided.
type RouterOptions struct {
	// Billing serves the tenant-scoped subscription endpoints.
	Billing Mountable

	// Probes
	Liveness  http.Handler
	Readiness http.Handler
}

// Router creates the application router.
//
// Example:
//
//	h := billing.NewHandlers(svc, billing.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware, tenant.Middleware(tenant.NewHeaderResolver()))
//	r.Mount("/", billing.Router(billing.RouterOptions{
//	    Billing:   h,
//	    Liveness:  httpserver.LivenessHandler(),
//	    Readiness: httpserver.ReadinessHandler(log, time.Second, checks),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Liveness != nil {
		r.Method(http.MethodGet, "/healthz", opts.Liveness)
	}
	if opts.Readiness != nil {
		r.Method(http.MethodGet, "/readyz", opts.Readiness)
	}
	if opts.Billing != nil {
		r.Mount("/billing", opts.Billing.Handle())
	}

	return r
}
