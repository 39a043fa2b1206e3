package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscription records.
// Each tenant has exactly one subscription, so TenantID serves as the primary key.
type Store interface {
	// Get retrieves a subscription by tenant ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription.
	// Implementations must reject records that fail Validate.
	Save(ctx context.Context, subscription *Subscription) error
}
