package limits

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// Counts is a tenant's resource usage at evaluation time. It is derived on
// every read and never cached.
type Counts struct {
	Businesses int `json:"business_count"`
	Offers     int `json:"offer_count"`
}

// Fits reports whether the counts stay within the quota.
func (c Counts) Fits(q subscription.Quota) bool {
	return c.Businesses <= q.MaxBusinesses && c.Offers <= q.MaxOffers
}

// Of returns the count for a single resource.
func (c Counts) Of(res subscription.Resource) int {
	switch res {
	case subscription.ResourceBusinesses:
		return c.Businesses
	case subscription.ResourceOffers:
		return c.Offers
	default:
		return 0
	}
}

// Business is a listed business owned by a tenant.
type Business struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// Offer is a discount offer published under one of the tenant's businesses.
type Offer struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
}

// Inventory lists everything a tenant owns.
type Inventory struct {
	Businesses []Business `json:"businesses"`
	Offers     []Offer    `json:"offers"`
}

// Counts derives usage from the lists.
func (inv *Inventory) Counts() Counts {
	if inv == nil {
		return Counts{}
	}
	return Counts{Businesses: len(inv.Businesses), Offers: len(inv.Offers)}
}

func (inv *Inventory) businessIDs() []uuid.UUID {
	if inv == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(inv.Businesses))
	for _, b := range inv.Businesses {
		ids = append(ids, b.ID)
	}
	return ids
}

func (inv *Inventory) offerIDs() []uuid.UUID {
	if inv == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(inv.Offers))
	for _, o := range inv.Offers {
		ids = append(ids, o.ID)
	}
	return ids
}
