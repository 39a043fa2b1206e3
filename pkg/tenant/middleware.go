package tenant

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the tenant of each request and adds it to the request context.
// Requests without a tenant pass through untouched; use RequireTenant to reject them.
func Middleware(resolver Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			t, err := resolver.Resolve(r)
			if err != nil {
				cfg.logger.WarnContext(r.Context(), "tenant resolution failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				cfg.errorHandler(w, r, err)
				return
			}
			if t == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireTenant creates middleware that ensures a tenant is present in the context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := FromContext(r.Context()); !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
