package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is a thread-safe in-memory state machine.
// Transitions are indexed as [from][event][]Transition.
type Machine[S, E comparable] struct {
	initial     S
	current     S
	transitions map[S]map[E][]Transition[S, E]
	terminal    map[S]struct{}
	observers   []Observer[S, E]
	mu          sync.RWMutex
}

func newMachine[S, E comparable](initial S) *Machine[S, E] {
	return &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]Transition[S, E]),
		terminal:    make(map[S]struct{}),
	}
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsTerminal reports whether the current state accepts no further events.
func (m *Machine[S, E]) IsTerminal() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.terminal[m.current]
	return ok
}

// AddTransition registers a transition. Several transitions may share the
// same from/event pair; the first whose guards pass wins.
func (m *Machine[S, E]) AddTransition(t Transition[S, E]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.terminal[t.From]; ok {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, name(t.From))
	}
	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E][]Transition[S, E])
	}
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	return nil
}

// Fire applies event to the current state.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	m.mu.Lock()

	from := m.current
	if _, ok := m.terminal[from]; ok {
		m.mu.Unlock()
		return NewErrNoTransitionAvailable(name(from), name(event))
	}

	transitions := m.transitions[from][event]
	if len(transitions) == 0 {
		m.mu.Unlock()
		return NewErrNoTransitionAvailable(name(from), name(event))
	}

	t, ok := firstAllowed(ctx, transitions, from, event, data)
	if !ok {
		m.mu.Unlock()
		return NewErrTransitionRejected(name(from), name(event))
	}

	// Actions run before the state change; any failure aborts the transition
	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.To
	observers := m.observers
	m.mu.Unlock()

	for _, obs := range observers {
		obs(ctx, from, t.To, event)
	}
	return nil
}

// CanFire reports whether event would be accepted in the current state.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.terminal[m.current]; ok {
		return false
	}
	_, ok := firstAllowed(ctx, m.transitions[m.current][event], m.current, event, data)
	return ok
}

// Events lists the events defined for the current state, in no particular order.
func (m *Machine[S, E]) Events() []E {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.terminal[m.current]; ok {
		return nil
	}
	events := make([]E, 0, len(m.transitions[m.current]))
	for e := range m.transitions[m.current] {
		events = append(events, e)
	}
	return events
}

// Reset returns the machine to its initial state.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func firstAllowed[S, E comparable](ctx context.Context, transitions []Transition[S, E], from S, event E, data any) (Transition[S, E], bool) {
	for _, t := range transitions {
		passed := true
		for _, guard := range t.Guards {
			if !guard(ctx, from, event, data) {
				passed = false
				break
			}
		}
		if passed {
			return t, true
		}
	}
	return Transition[S, E]{}, false
}
