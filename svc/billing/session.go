package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdir/pkg/limits"
	"github.com/dmitrymomot/bizdir/pkg/subscription"
)

// Session drives one tenant's billing state against a Service. Each
// mutation goes through State: Begin shows the predicted result, the
// server's snapshot replaces it on success, and a failed call rolls back to
// the last confirmed snapshot. Conflicts trigger a re-fetch because they
// mean the local copy is stale.
type Session struct {
	tenantID uuid.UUID
	backend  Service
	state    *State
	now      func() time.Time
}

// NewSession creates a session for tenantID. The state is empty until the
// first Refresh or mutation.
func NewSession(backend Service, tenantID uuid.UUID) *Session {
	if backend == nil {
		panic("billing: backend is required")
	}
	return &Session{
		tenantID: tenantID,
		backend:  backend,
		state:    NewState(backend.Catalog()),
		now:      time.Now,
	}
}

// State exposes the underlying state container.
func (s *Session) State() *State { return s.state }

// Refresh re-fetches the server snapshot and reconciles with it. It is the
// manual retry path after a transport error.
func (s *Session) Refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := s.backend.Snapshot(ctx, s.tenantID)
	if err != nil {
		return nil, err
	}
	s.state.Reconcile(snap)
	return snap, nil
}

func (s *Session) ScheduleDowngrade(ctx context.Context, reason string) (*DowngradeResult, error) {
	var result *DowngradeResult
	_, err := s.run(ctx, Change{Op: subscription.OpScheduleDowngrade, Reason: reason}, func() (*Snapshot, error) {
		res, err := s.backend.ScheduleDowngrade(ctx, s.tenantID, reason)
		if err != nil {
			return nil, err
		}
		result = res
		return res.Snapshot, nil
	})
	return result, err
}

func (s *Session) CancelScheduledDowngrade(ctx context.Context) (*Snapshot, error) {
	return s.run(ctx, Change{Op: subscription.OpCancelDowngrade}, func() (*Snapshot, error) {
		return s.backend.CancelScheduledDowngrade(ctx, s.tenantID)
	})
}

func (s *Session) CancelAutoRenewal(ctx context.Context, reason string) (*Snapshot, error) {
	return s.run(ctx, Change{Op: subscription.OpCancelAutoRenewal, Reason: reason}, func() (*Snapshot, error) {
		return s.backend.CancelAutoRenewal(ctx, s.tenantID, reason)
	})
}

func (s *Session) ReactivateAutoRenewal(ctx context.Context) (*Snapshot, error) {
	return s.run(ctx, Change{Op: subscription.OpReactivateAutoRenewal}, func() (*Snapshot, error) {
		return s.backend.ReactivateAutoRenewal(ctx, s.tenantID)
	})
}

func (s *Session) DeleteSelected(ctx context.Context, sel limits.Selection) (*Snapshot, error) {
	return s.run(ctx, Change{Op: OpDeleteSelected, Selection: sel}, func() (*Snapshot, error) {
		return s.backend.DeleteSelected(ctx, s.tenantID, sel)
	})
}

func (s *Session) UpgradePlan(ctx context.Context, planID string) (*Snapshot, error) {
	return s.run(ctx, Change{Op: OpUpgradePlan, PlanID: planID}, func() (*Snapshot, error) {
		return s.backend.UpgradePlan(ctx, s.tenantID, planID)
	})
}

func (s *Session) run(ctx context.Context, change Change, call func() (*Snapshot, error)) (*Snapshot, error) {
	if s.state.Confirmed() == nil {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	if _, err := s.state.Begin(change, s.now().UTC()); err != nil {
		return nil, err
	}

	snap, err := call()
	if err == nil {
		s.state.Reconcile(snap)
		return snap, nil
	}

	s.state.Rollback()
	if IsConflict(err) {
		if _, refreshErr := s.Refresh(ctx); refreshErr != nil {
			return nil, errors.Join(err, refreshErr)
		}
	}
	return nil, err
}
