// Package statemachine implements a small finite state machine with guarded,
// action-bearing transitions.
//
// States and events are interfaces with a single Name method; StringState and
// StringEvent cover the common case. A Machine is built with functional
// options and is safe for concurrent use:
//
//	const (
//	    Renewing    = statemachine.StringState("renewing")
//	    NotRenewing = statemachine.StringState("not_renewing")
//	    Cancel      = statemachine.StringEvent("cancel_auto_renewal")
//	)
//
//	m := statemachine.MustNew(Renewing,
//	    statemachine.WithTransition(Renewing, NotRenewing, Cancel,
//	        statemachine.WithGuard(hasReason),
//	        statemachine.WithAction(disableRenewal),
//	    ),
//	)
//	if err := m.Fire(ctx, Cancel, input); err != nil {
//	    // statemachine.IsNoTransition / statemachine.IsRejected
//	}
//
// Fire evaluates the guards of each candidate edge in registration order, runs
// the actions of the first edge whose guards pass, and only then moves to the
// target state. A failing action leaves the machine where it was.
package statemachine
