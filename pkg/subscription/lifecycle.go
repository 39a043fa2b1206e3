package subscription

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/bizdir/pkg/sanitizer"
	"github.com/dmitrymomot/bizdir/pkg/statemachine"
)

// MaxReasonLength caps free-text reasons stored on the record, in characters.
const MaxReasonLength = 500

// Operation is a user-triggered mutation of a subscription.
// It doubles as the lifecycle machine event.
type Operation string

const (
	OpScheduleDowngrade     Operation = "schedule_downgrade"
	OpCancelDowngrade       Operation = "cancel_downgrade"
	OpCancelAutoRenewal     Operation = "cancel_auto_renewal"
	OpReactivateAutoRenewal Operation = "reactivate_auto_renewal"
)

func (o Operation) Name() string { return string(o) }

// Lifecycle states of a record, derived from its fields.
const (
	LifecycleFree               statemachine.StringState = "free"
	LifecycleRenewing           statemachine.StringState = "renewing"
	LifecycleNotRenewing        statemachine.StringState = "not_renewing"
	LifecycleDowngradeScheduled statemachine.StringState = "downgrade_scheduled"
)

// LifecycleState maps a record onto the lifecycle machine.
func LifecycleState(sub *Subscription) statemachine.State {
	switch {
	case sub.PlanID == "" || sub.IsFree():
		return LifecycleFree
	case sub.DowngradeScheduled:
		return LifecycleDowngradeScheduled
	case sub.AutoRenew:
		return LifecycleRenewing
	default:
		return LifecycleNotRenewing
	}
}

type transitionData struct {
	sub    *Subscription
	reason string
	now    time.Time
}

var lifecycle = []statemachine.Transition{
	{From: LifecycleRenewing, To: LifecycleDowngradeScheduled, Event: OpScheduleDowngrade, Actions: []statemachine.Action{scheduleDowngrade}},
	{From: LifecycleNotRenewing, To: LifecycleDowngradeScheduled, Event: OpScheduleDowngrade, Actions: []statemachine.Action{scheduleDowngrade}},
	{From: LifecycleDowngradeScheduled, To: LifecycleRenewing, Event: OpCancelDowngrade, Actions: []statemachine.Action{cancelDowngrade}},
	{From: LifecycleRenewing, To: LifecycleNotRenewing, Event: OpCancelAutoRenewal, Actions: []statemachine.Action{cancelAutoRenewal}},
	{From: LifecycleNotRenewing, To: LifecycleRenewing, Event: OpReactivateAutoRenewal, Actions: []statemachine.Action{reactivateAutoRenewal}},
}

func newLifecycle(sub *Subscription) *statemachine.Machine {
	return statemachine.MustNew(LifecycleState(sub), statemachine.WithTransitions(lifecycle...))
}

// Allowed reports whether op can be applied to sub right now.
func Allowed(sub *Subscription, op Operation) bool {
	if sub == nil {
		return false
	}
	return newLifecycle(sub).CanFire(context.Background(), op, nil)
}

// transition fires op on a copy of sub and validates the result.
func transition(sub *Subscription, op Operation, reason string, now time.Time) (*Subscription, error) {
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	next := sub.Clone()
	m := newLifecycle(next)
	data := &transitionData{sub: next, reason: cleanReason(reason), now: now}
	if err := m.Fire(context.Background(), op, data); err != nil {
		if statemachine.IsNoTransition(err) {
			return nil, conflict(m.Current(), op)
		}
		return nil, err
	}

	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

func conflict(from statemachine.State, op Operation) error {
	if op == OpCancelDowngrade {
		return ErrNoDowngradeScheduled
	}
	switch from {
	case LifecycleFree:
		return ErrFreePlan
	case LifecycleDowngradeScheduled:
		if op == OpScheduleDowngrade {
			return ErrAlreadyScheduled
		}
		return ErrDowngradePending
	case LifecycleNotRenewing:
		return ErrAutoRenewAlreadyOff
	case LifecycleRenewing:
		return ErrAutoRenewAlreadyOn
	}
	return errors.New("unexpected lifecycle state " + from.Name())
}

// cleanReason strips markup and control characters and collapses whitespace.
func cleanReason(reason string) string {
	return sanitizer.FreeText(reason)
}

func validateReason(reason string) error {
	reason = cleanReason(reason)
	switch {
	case reason == "":
		return ErrReasonRequired
	case utf8.RuneCountInString(reason) > MaxReasonLength:
		return ErrReasonTooLong
	}
	return nil
}

func scheduleDowngrade(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	eff := EffectiveDate(d.sub, d.now)
	d.sub.DowngradeScheduled = true
	d.sub.DowngradeEffectiveDate = &eff
	d.sub.DowngradeReason = ptr(d.reason)
	d.sub.AutoRenew = false
	return nil
}

func cancelDowngrade(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	d.sub.DowngradeScheduled = false
	d.sub.DowngradeEffectiveDate = nil
	d.sub.DowngradeReason = nil
	d.sub.AutoRenew = true
	return nil
}

func cancelAutoRenewal(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	d.sub.AutoRenew = false
	d.sub.AutoRenewCancelReason = ptr(d.reason)
	return nil
}

func reactivateAutoRenewal(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d := data.(*transitionData)
	d.sub.AutoRenew = true
	d.sub.AutoRenewCancelReason = nil
	return nil
}
