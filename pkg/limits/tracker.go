package limits

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// CountSource reads a tenant's resources from persistence.
// Counts must be exact, never estimates.
type CountSource interface {
	CountResources(ctx context.Context, tenantID uuid.UUID) (Counts, error)
	ListResources(ctx context.Context, tenantID uuid.UUID) (*Inventory, error)
}

// Tracker measures resource usage. It keeps no cache: callers re-measure
// after every mutation.
type Tracker struct {
	src CountSource
}

// NewTracker returns a Tracker over src. Panics if src is nil.
func NewTracker(src CountSource) *Tracker {
	if src == nil {
		panic("limits: count source cannot be nil")
	}
	return &Tracker{src: src}
}

// Measure returns the current counts for a tenant.
func (t *Tracker) Measure(ctx context.Context, tenantID uuid.UUID) (Counts, error) {
	counts, err := t.src.CountResources(ctx, tenantID)
	if err != nil {
		return Counts{}, errors.Join(ErrFailedToCountResources, err)
	}
	return counts, nil
}

// Inventory returns the resources a tenant owns.
func (t *Tracker) Inventory(ctx context.Context, tenantID uuid.UUID) (*Inventory, error) {
	inv, err := t.src.ListResources(ctx, tenantID)
	if err != nil {
		return nil, errors.Join(ErrFailedToCountResources, err)
	}
	if inv == nil {
		inv = &Inventory{}
	}
	return inv, nil
}
