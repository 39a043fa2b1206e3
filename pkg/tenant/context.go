package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/logger"
)

type contextKey struct{}

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// FromContext returns the tenant resolved for the request, if any.
func FromContext(ctx context.Context) (*Tenant, bool) {
	tenant, ok := ctx.Value(contextKey{}).(*Tenant)
	return tenant, ok
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns zero UUID and false if no tenant is found.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenant, ok := FromContext(ctx)
	if !ok || tenant == nil {
		return uuid.UUID{}, false
	}
	return tenant.ID, true
}

// MustFromContext is FromContext for handlers mounted behind RequireTenant.
// It panics when the tenant is missing.
func MustFromContext(ctx context.Context) *Tenant {
	tenant, ok := FromContext(ctx)
	if !ok || tenant == nil {
		panic("tenant: no tenant in context")
	}
	return tenant
}

// LoggerExtractor adds tenant_id to every record logged with a tenant-scoped context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return logger.TenantID(id), true
		}
		return slog.Attr{}, false
	}
}
