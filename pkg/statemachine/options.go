package statemachine

import (
	"fmt"
)

// Option configures a state machine during construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[S, E comparable] func(*Transition[S, E])

// New creates a state machine with the given initial state and options.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := newMachine[S, E](initial)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a misconfigured transition table.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition to the state machine.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		t := Transition[S, E]{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		return m.AddTransition(t)
	}
}

// WithTransitions adds multiple transitions to the state machine at once.
func WithTransitions[S, E comparable](transitions []Transition[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for i, t := range transitions {
			if err := m.AddTransition(t); err != nil {
				return fmt.Errorf("failed to add transition[%d] %s->%s on %s: %w",
					i, name(t.From), name(t.To), name(t.Event), err)
			}
		}
		return nil
	}
}

// WithTerminal marks states that accept no events. Declare terminal states
// before transitions; adding a transition out of a terminal state fails.
func WithTerminal[S, E comparable](states ...S) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for _, s := range states {
			if len(m.transitions[s]) > 0 {
				return fmt.Errorf("%w: %s has outgoing transitions", ErrInvalidTransition, name(s))
			}
			m.terminal[s] = struct{}{}
		}
		return nil
	}
}

// WithObserver registers a callback run after each completed transition,
// outside the machine lock.
func WithObserver[S, E comparable](obs Observer[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
		return nil
	}
}

// WithGuard adds a single guard to a transition.
func WithGuard[S, E comparable](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

// WithAction adds a single action to a transition.
func WithAction[S, E comparable](action Action[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}
