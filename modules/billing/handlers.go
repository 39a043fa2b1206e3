package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/binder"
	"github.com/dmitrymomot/bizdir/handler"
	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/ratelimit"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
	"github.com/dmitrymomot/bizdir/pkg/tenant"
	billingsvc "github.com/dmitrymomot/bizdir/svc/billing"
)

// Handlers serves the billing endpoints of the current tenant.
type Handlers struct {
	svc          billingsvc.Service
	log          *slog.Logger
	errorHandler handler.ErrorHandler
	maxBodySize  int64
	limiter      ratelimit.Limiter
}

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger sets the logger used for request errors.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.log = l
		}
	}
}

// WithErrorHandler replaces the JSON error handler.
func WithErrorHandler(eh handler.ErrorHandler) Option {
	return func(h *Handlers) {
		if eh != nil {
			h.errorHandler = eh
		}
	}
}

// WithMaxBodySize limits request bodies. Defaults to binder.DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// WithRateLimiter throttles state-changing requests per tenant.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(h *Handlers) { h.limiter = l }
}

// NewHandlers creates the billing handlers. Panics if svc is nil.
func NewHandlers(svc billingsvc.Service, opts ...Option) *Handlers {
	if svc == nil {
		panic("billing: service is required")
	}
	h := &Handlers{
		svc:         svc,
		log:         slog.Default(),
		maxBodySize: binder.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.errorHandler == nil {
		h.errorHandler = handler.NewErrorHandler(h.log)
	}
	return h
}

// Handle returns the billing router. All routes except /plans require a tenant.
func (h *Handlers) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/plans", wrap(h, h.plans))

	r.Group(func(r chi.Router) {
		r.Use(tenant.RequireTenant(h.rejectAnonymous))

		r.Get("/subscription", wrap(h, h.subscription))
		r.Get("/resources", wrap(h, h.resources))
		r.Get("/can-create/{resource}", wrap(h, h.canCreate, binder.Path(chi.URLParam)))

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(ratelimit.Middleware(h.limiter, tenantKey,
					ratelimit.WithOnLimitReached(h.rejectThrottled),
					ratelimit.WithLogger(h.log),
				))
			}

			body := binder.JSONWithLimit(h.maxBodySize)
			r.Post("/schedule-downgrade", wrap(h, h.scheduleDowngrade, body))
			r.Post("/cancel-scheduled-downgrade", wrap(h, h.cancelScheduledDowngrade))
			r.Post("/cancel-auto-renewal", wrap(h, h.cancelAutoRenewal, body))
			r.Post("/reactivate-auto-renewal", wrap(h, h.reactivateAutoRenewal))
			r.Post("/delete-selected-items", wrap(h, h.deleteSelected, body))
			r.Post("/upgrade-plan", wrap(h, h.upgradePlan, body))
		})
	})

	return r
}

func wrap[R any](h *Handlers, fn handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithBinders[R](binders...),
		handler.WithErrorHandler[R](h.errorHandler),
	)
}

func (h *Handlers) rejectAnonymous(w http.ResponseWriter, r *http.Request, _ error) {
	h.errorHandler(handler.NewContext(w, r), handler.ErrUnauthorized)
}

func (h *Handlers) rejectThrottled(w http.ResponseWriter, r *http.Request, _ *ratelimit.Result) {
	h.errorHandler(handler.NewContext(w, r), handler.ErrTooManyRequests)
}

func tenantKey(r *http.Request) string {
	id, ok := tenant.IDFromContext(r.Context())
	if !ok {
		return ""
	}
	return "billing:" + id.String()
}

func (h *Handlers) plans(_ handler.Context, _ struct{}) handler.Response {
	plans := h.svc.Catalog().Plans()
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanResponse(p))
	}
	return handler.JSON(out)
}

func (h *Handlers) subscription(ctx handler.Context, _ struct{}) handler.Response {
	snap, err := h.svc.Snapshot(ctx, tenantID(ctx))
	if err != nil {
		return fail(err)
	}
	return handler.JSON(newSnapshotResponse(snap))
}

func (h *Handlers) resources(ctx handler.Context, _ struct{}) handler.Response {
	snap, err := h.svc.Snapshot(ctx, tenantID(ctx))
	if err != nil {
		return fail(err)
	}
	return handler.JSON(newResourcesResponse(snap))
}

func (h *Handlers) canCreate(ctx handler.Context, req resourceRequest) handler.Response {
	err := h.svc.CanCreate(ctx, tenantID(ctx), subscription.Resource(req.Resource))
	switch {
	case err == nil:
		return handler.JSON(canCreateResponse{Resource: req.Resource, Allowed: true})
	case errors.Is(err, limits.ErrLimitExceeded):
		return handler.JSON(canCreateResponse{Resource: req.Resource, Allowed: false})
	default:
		return fail(err)
	}
}

func (h *Handlers) scheduleDowngrade(ctx handler.Context, req reasonRequest) handler.Response {
	res, err := h.svc.ScheduleDowngrade(ctx, tenantID(ctx), req.Reason)
	if err != nil {
		return fail(err)
	}
	if res.Notice != "" {
		return handler.JSON(newDowngradeResponse(res), handler.WithJSONMeta(map[string]any{"notice": res.Notice}))
	}
	return handler.JSON(newDowngradeResponse(res))
}

func (h *Handlers) cancelScheduledDowngrade(ctx handler.Context, _ struct{}) handler.Response {
	return snapshotOrFail(h.svc.CancelScheduledDowngrade(ctx, tenantID(ctx)))
}

func (h *Handlers) cancelAutoRenewal(ctx handler.Context, req reasonRequest) handler.Response {
	return snapshotOrFail(h.svc.CancelAutoRenewal(ctx, tenantID(ctx), req.Reason))
}

func (h *Handlers) reactivateAutoRenewal(ctx handler.Context, _ struct{}) handler.Response {
	return snapshotOrFail(h.svc.ReactivateAutoRenewal(ctx, tenantID(ctx)))
}

func (h *Handlers) deleteSelected(ctx handler.Context, req limits.Selection) handler.Response {
	return snapshotOrFail(h.svc.DeleteSelected(ctx, tenantID(ctx), req))
}

func (h *Handlers) upgradePlan(ctx handler.Context, req upgradeRequest) handler.Response {
	return snapshotOrFail(h.svc.UpgradePlan(ctx, tenantID(ctx), req.PlanID))
}

func snapshotOrFail(snap *billingsvc.Snapshot, err error) handler.Response {
	if err != nil {
		return fail(err)
	}
	return handler.JSON(newSnapshotResponse(snap))
}

// tenantID is only called behind RequireTenant, so the tenant is present.
func tenantID(ctx handler.Context) uuid.UUID {
	id, _ := tenant.IDFromContext(ctx)
	return id
}
