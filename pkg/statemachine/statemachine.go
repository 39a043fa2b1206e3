package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named node of the machine.
type State interface {
	Name() string
}

// Event is a named trigger that moves the machine between states.
type Event interface {
	Name() string
}

// Guard decides at fire time whether a transition may run.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action performs the side effect of a transition. An error aborts the
// transition and leaves the machine in its previous state.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition describes one edge of the machine.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// StateMachine is the behaviour exposed to callers.
type StateMachine interface {
	Current() State
	Fire(ctx context.Context, event Event, data any) error
	CanFire(ctx context.Context, event Event, data any) bool
	Reset()
}

// StringState is the simplest State implementation.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is the simplest Event implementation.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

type edgeKey struct {
	from  string
	event string
}

// Machine is an in-memory, concurrency-safe StateMachine.
// Edges sharing the same from/event pair are tried in registration order and
// the first one whose guards all pass is taken.
type Machine struct {
	mu      sync.RWMutex
	initial State
	current State
	edges   map[edgeKey][]Transition
}

// Option configures a Machine during construction.
type Option func(*Machine) error

// TransitionOption attaches guards or actions to a single transition.
type TransitionOption func(*Transition)

// New builds a machine starting in initial.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == nil {
		return nil, ErrNilState
	}
	m := &Machine{
		initial: initial,
		current: initial,
		edges:   make(map[edgeKey][]Transition),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a configuration error.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// WithTransition registers an edge from -> to triggered by event.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		t := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		return m.add(t)
	}
}

// WithTransitions registers a batch of prepared edges.
func WithTransitions(ts ...Transition) Option {
	return func(m *Machine) error {
		for i, t := range ts {
			if err := m.add(t); err != nil {
				return fmt.Errorf("transition[%d]: %w", i, err)
			}
		}
		return nil
	}
}

// WithGuard appends guards to a transition. Nil guards are skipped.
func WithGuard(guards ...Guard) TransitionOption {
	return func(t *Transition) {
		for _, g := range guards {
			if g != nil {
				t.Guards = append(t.Guards, g)
			}
		}
	}
}

// WithAction appends actions to a transition. Nil actions are skipped.
func WithAction(actions ...Action) TransitionOption {
	return func(t *Transition) {
		for _, a := range actions {
			if a != nil {
				t.Actions = append(t.Actions, a)
			}
		}
	}
}

func (m *Machine) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := edgeKey{from: t.From.Name(), event: t.Event.Name()}
	m.edges[key] = append(m.edges[key], t)
	return nil
}

// Current returns the state the machine is in.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire runs the first eligible transition for event.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.pick(ctx, event, data)
	if err != nil {
		return err
	}

	for _, action := range t.Actions {
		if err := action(ctx, m.current, t.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}
	m.current = t.To
	return nil
}

// CanFire reports whether Fire would find an eligible transition.
// Actions are not run.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.pick(ctx, event, data)
	return err == nil
}

// Reset puts the machine back into its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.current = m.initial
	m.mu.Unlock()
}

// pick must be called with m.mu held.
func (m *Machine) pick(ctx context.Context, event Event, data any) (*Transition, error) {
	from := m.current.Name()
	candidates := m.edges[edgeKey{from: from, event: event.Name()}]
	if len(candidates) == 0 {
		return nil, &NoTransitionError{State: from, Event: event.Name()}
	}

	for i := range candidates {
		if guardsPass(ctx, candidates[i].Guards, m.current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &RejectedError{State: from, Event: event.Name()}
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, g := range guards {
		if !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
