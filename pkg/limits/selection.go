package limits

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/validator"
)

// Selection is the tenant's choice of resources to delete.
type Selection struct {
	BusinessIDs []uuid.UUID `json:"business_ids"`
	OfferIDs    []uuid.UUID `json:"offer_ids"`
}

// IsEmpty reports whether nothing was selected.
func (s Selection) IsEmpty() bool {
	return len(s.BusinessIDs) == 0 && len(s.OfferIDs) == 0
}

// SelectionResult is the outcome of ValidateSelection.
type SelectionResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`

	details validator.ValidationErrors
}

// Err returns nil for a valid selection. Otherwise it joins
// ErrInvalidSelection, the sentinel from Cause and the field errors.
func (r SelectionResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(ErrInvalidSelection, r.Cause(), r.details)
}

// ValidateSelection accepts a selection only when it removes exactly what the
// request asks for: the number of distinct business and offer IDs must equal
// BusinessesToRemove and OffersToRemove, and every ID must belong to the
// tenant's inventory. A nil request means nothing may be selected.
func ValidateSelection(req *EnforcementRequest, sel Selection, inv *Inventory) SelectionResult {
	var wantBusinesses, wantOffers int
	if req != nil {
		wantBusinesses, wantOffers = req.BusinessesToRemove, req.OffersToRemove
	}

	err := validator.Apply(
		validator.LenSlice("business_ids", sel.BusinessIDs, wantBusinesses),
		validator.LenSlice("offer_ids", sel.OfferIDs, wantOffers),
		validator.UniqueSlice("business_ids", sel.BusinessIDs),
		validator.UniqueSlice("offer_ids", sel.OfferIDs),
		validator.SubsetSlice("business_ids", sel.BusinessIDs, inv.businessIDs()),
		validator.SubsetSlice("offer_ids", sel.OfferIDs, inv.offerIDs()),
	)
	if err == nil {
		return SelectionResult{Valid: true}
	}

	details := validator.ExtractValidationErrors(err)
	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, d.Field+": "+d.Message)
	}
	return SelectionResult{Errors: msgs, details: details}
}

// Cause maps the first failed rule to a sentinel error.
func (r SelectionResult) Cause() error {
	if r.Valid || len(r.details) == 0 {
		return nil
	}
	switch r.details[0].TranslationKey {
	case "validation.unique_items":
		return ErrDuplicateSelection
	case "validation.subset_items":
		return ErrNotOwned
	default:
		return ErrSelectionSize
	}
}

// Project predicts the counts left after deleting sel. Deleting a business
// removes its offers too; an offer that is both selected and under a
// selected business is removed once.
func Project(counts Counts, sel Selection, inv *Inventory) Counts {
	businesses := make(map[uuid.UUID]struct{}, len(sel.BusinessIDs))
	for _, id := range sel.BusinessIDs {
		businesses[id] = struct{}{}
	}

	offers := make(map[uuid.UUID]struct{}, len(sel.OfferIDs))
	for _, id := range sel.OfferIDs {
		offers[id] = struct{}{}
	}
	if inv != nil {
		for _, o := range inv.Offers {
			if _, ok := businesses[o.BusinessID]; ok {
				offers[o.ID] = struct{}{}
			}
		}
	}

	return Counts{
		Businesses: max(0, counts.Businesses-len(businesses)),
		Offers:     max(0, counts.Offers-len(offers)),
	}
}
