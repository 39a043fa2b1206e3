package billing

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// Operations that are not subscription lifecycle transitions.
const (
	OpDeleteSelected subscription.Operation = "delete_selected"
	OpUpgradePlan    subscription.Operation = "upgrade_plan"
)

// Change describes a mutation about to be sent to the server. Only the
// fields used by Op need to be set.
type Change struct {
	Op        subscription.Operation
	Reason    string
	Selection limits.Selection
	PlanID    string
}

// State holds the last server-confirmed snapshot of one tenant and at most
// one optimistic change on top of it. Reconcile is the only way confirmed
// state changes; there are no per-field pending flags.
type State struct {
	catalog *subscription.Catalog

	mu         sync.RWMutex
	confirmed  *Snapshot
	optimistic *Snapshot
	pending    subscription.Operation
}

// NewState creates an empty state. Call Reconcile with the first snapshot.
func NewState(catalog *subscription.Catalog) *State {
	if catalog == nil {
		panic("billing: catalog is required")
	}
	return &State{catalog: catalog}
}

// Begin marks change as in flight and returns the predicted view.
//
// Input errors (empty reason, bad selection, unknown plan) are returned
// without marking anything, so the caller can re-prompt without contacting
// the server. If the change conflicts with the local copy the view stays
// unchanged and the server decides, since its record is authoritative.
func (s *State) Begin(change Change, now time.Time) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != "" {
		return nil, ErrOperationInFlight
	}
	if s.confirmed == nil {
		return nil, ErrNotLoaded
	}

	predicted, err := s.predict(change, now)
	switch {
	case err == nil:
	case IsValidation(err), errors.Is(err, ErrUnknownOperation):
		return nil, err
	default:
		predicted = s.confirmed.Clone()
	}

	s.pending = change.Op
	s.optimistic = predicted
	return predicted.Clone(), nil
}

// Reconcile replaces everything with the server-confirmed snapshot and
// clears any pending change.
func (s *State) Reconcile(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = snap.Clone()
	s.optimistic = nil
	s.pending = ""
}

// Rollback discards the pending change. The view falls back to the last
// confirmed snapshot.
func (s *State) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optimistic = nil
	s.pending = ""
}

// View returns what should be shown right now: the optimistic prediction
// while a change is in flight, otherwise the confirmed snapshot.
func (s *State) View() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.optimistic != nil {
		return s.optimistic.Clone()
	}
	return s.confirmed.Clone()
}

// Confirmed returns the last server-confirmed snapshot.
func (s *State) Confirmed() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.confirmed.Clone()
}

// InFlight returns the pending operation, if any.
func (s *State) InFlight() (subscription.Operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending, s.pending != ""
}

func (s *State) predict(change Change, now time.Time) (*Snapshot, error) {
	base := s.confirmed
	var (
		next *subscription.Subscription
		err  error
	)

	switch change.Op {
	case subscription.OpScheduleDowngrade:
		next, _, err = subscription.ScheduleDowngrade(base.Subscription, change.Reason, now)
	case subscription.OpCancelDowngrade:
		next, err = subscription.CancelScheduledDowngrade(base.Subscription, now)
	case subscription.OpCancelAutoRenewal:
		next, err = subscription.CancelAutoRenewal(base.Subscription, change.Reason, now)
	case subscription.OpReactivateAutoRenewal:
		next, err = subscription.ReactivateAutoRenewal(base.Subscription, now)
	case OpUpgradePlan:
		plan, ok := s.catalog.Plan(change.PlanID)
		if !ok {
			return nil, subscription.ErrPlanNotFound
		}
		sub := base.Subscription
		if sub == nil {
			sub = &subscription.Subscription{CreatedAt: now}
		}
		next = activate(sub, plan, now)
	case OpDeleteSelected:
		if !base.Blocked() {
			return nil, ErrNothingToEnforce
		}
		if err := limits.ValidateSelection(base.Enforcement, change.Selection, base.Inventory).Err(); err != nil {
			return nil, err
		}
		counts := limits.Project(base.Counts, change.Selection, base.Inventory)
		return derive(s.catalog, base.Subscription.Clone(), counts, remaining(base.Inventory, change.Selection), now), nil
	default:
		return nil, ErrUnknownOperation
	}
	if err != nil {
		return nil, err
	}
	return derive(s.catalog, next, base.Counts, base.Inventory, now), nil
}

// remaining returns inv without the selected resources and their cascaded offers.
func remaining(inv *limits.Inventory, sel limits.Selection) *limits.Inventory {
	if inv == nil {
		return &limits.Inventory{}
	}
	gone := make(map[uuid.UUID]struct{}, len(sel.BusinessIDs)+len(sel.OfferIDs))
	for _, id := range sel.BusinessIDs {
		gone[id] = struct{}{}
	}
	for _, id := range sel.OfferIDs {
		gone[id] = struct{}{}
	}

	out := &limits.Inventory{}
	for _, b := range inv.Businesses {
		if _, ok := gone[b.ID]; !ok {
			out.Businesses = append(out.Businesses, b)
		}
	}
	for _, o := range inv.Offers {
		_, offerGone := gone[o.ID]
		_, parentGone := gone[o.BusinessID]
		if !offerGone && !parentGone {
			out.Offers = append(out.Offers, o)
		}
	}
	return out
}
