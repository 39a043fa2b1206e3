package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrNilState          = errors.New("statemachine: initial state cannot be nil")
	ErrInvalidTransition = errors.New("statemachine: from, to and event are required")
	ErrInvalidEvent      = errors.New("statemachine: event cannot be nil")
)

// NoTransitionError means no edge leaves State on Event.
type NoTransitionError struct {
	State string
	Event string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition from state %q on event %q", e.State, e.Event)
}

// RejectedError means edges exist but every one was blocked by a guard.
type RejectedError struct {
	State string
	Event string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("transition from state %q on event %q rejected by guards", e.State, e.Event)
}

// IsNoTransition reports whether err wraps a NoTransitionError.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

// IsRejected reports whether err wraps a RejectedError.
func IsRejected(err error) bool {
	var e *RejectedError
	return errors.As(err, &e)
}
