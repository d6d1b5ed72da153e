// Package statemachine is a small generic finite state machine.
//
// States and events are any comparable types, typically string-based enums:
//
//	type State string
//	type Event string
//
//	m := statemachine.MustNew[State, Event]("idle",
//	    statemachine.WithTerminal[State, Event]("done"),
//	    statemachine.WithTransition[State, Event]("idle", "running", "start"),
//	    statemachine.WithTransition[State, Event]("running", "done", "finish",
//	        statemachine.WithGuard(func(ctx context.Context, from State, e Event, data any) bool {
//	            return data != nil
//	        }),
//	    ),
//	)
//	err := m.Fire(ctx, "start", nil)
//
// Guards veto a transition; the first transition for a from/event pair whose
// guards all pass is taken. Actions run after the guards and before the state
// changes, and an action error aborts the transition. Observers run after the
// state changes, outside the lock. Terminal states reject every event.
//
// Fire errors can be told apart with IsNoTransitionAvailableError and
// IsTransitionRejectedError. All methods are safe for concurrent use.
package statemachine
