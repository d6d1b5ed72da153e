package statemachine_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/statemachine"
)

type state string

type event string

const (
	draft     state = "draft"
	inReview  state = "in_review"
	approved  state = "approved"
	rejected  state = "rejected"
	published state = "published"

	submit  event = "submit"
	approve event = "approve"
	reject  event = "reject"
	publish event = "publish"
)

type sm = statemachine.Machine[state, event]

func reviewMachine(t *testing.T, opts ...statemachine.Option[state, event]) *sm {
	t.Helper()
	base := []statemachine.Option[state, event]{
		statemachine.WithTerminal[state, event](published, rejected),
		statemachine.WithTransition[state, event](draft, inReview, submit),
		statemachine.WithTransition[state, event](inReview, approved, approve),
		statemachine.WithTransition[state, event](inReview, rejected, reject),
		statemachine.WithTransition[state, event](approved, published, publish),
	}
	m, err := statemachine.New(draft, append(base, opts...)...)
	require.NoError(t, err)
	return m
}

func TestMachine_BasicTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := reviewMachine(t)

	assert.Equal(t, draft, m.Current())
	assert.True(t, m.CanFire(ctx, submit, nil))
	assert.False(t, m.CanFire(ctx, approve, nil))

	require.NoError(t, m.Fire(ctx, submit, nil))
	assert.Equal(t, inReview, m.Current())
	events := m.Events()
	slices.Sort(events)
	assert.Equal(t, []event{approve, reject}, events)

	require.NoError(t, m.Fire(ctx, approve, nil))
	require.NoError(t, m.Fire(ctx, publish, nil))
	assert.Equal(t, published, m.Current())
	assert.True(t, m.IsTerminal())
	assert.Empty(t, m.Events())

	m.Reset()
	assert.Equal(t, draft, m.Current())
	assert.False(t, m.IsTerminal())
}

func TestMachine_NoTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := reviewMachine(t)

	err := m.Fire(ctx, publish, nil)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
	assert.EqualError(t, err, "no transition available from state 'draft' for event 'publish'")
	assert.Equal(t, draft, m.Current())
}

func TestMachine_TerminalRejectsEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := reviewMachine(t)
	require.NoError(t, m.Fire(ctx, submit, nil))
	require.NoError(t, m.Fire(ctx, reject, nil))

	err := m.Fire(ctx, submit, nil)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
	assert.False(t, m.CanFire(ctx, submit, nil))
}

func TestMachine_Guards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	authorized := func(_ context.Context, _ state, _ event, data any) bool {
		ok, _ := data.(bool)
		return ok
	}

	m := statemachine.MustNew(draft,
		statemachine.WithTransition(draft, inReview, submit, statemachine.WithGuard[state, event](authorized)),
	)

	assert.False(t, m.CanFire(ctx, submit, false))
	err := m.Fire(ctx, submit, false)
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.Equal(t, draft, m.Current())

	require.NoError(t, m.Fire(ctx, submit, true))
	assert.Equal(t, inReview, m.Current())
}

func TestMachine_GuardBranching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	isApproved := func(_ context.Context, _ state, _ event, data any) bool { return data == "yes" }

	m := statemachine.MustNew(inReview,
		statemachine.WithTransition(inReview, approved, submit, statemachine.WithGuard[state, event](isApproved)),
		statemachine.WithTransition[state, event](inReview, rejected, submit),
	)

	require.NoError(t, m.Fire(ctx, submit, "no"))
	assert.Equal(t, rejected, m.Current(), "first passing transition wins")

	m.Reset()
	require.NoError(t, m.Fire(ctx, submit, "yes"))
	assert.Equal(t, approved, m.Current())
}

func TestMachine_ActionFailureAborts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")
	var calls []string

	m := statemachine.MustNew(draft,
		statemachine.WithTransition(draft, inReview, submit,
			statemachine.WithAction[state, event](func(_ context.Context, from, to state, e event, _ any) error {
				calls = append(calls, string(from)+">"+string(to))
				return nil
			}),
			statemachine.WithAction[state, event](func(context.Context, state, state, event, any) error { return boom }),
		),
	)

	err := m.Fire(ctx, submit, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, draft, m.Current())
	assert.Equal(t, []string{"draft>in_review"}, calls)
}

func TestMachine_Observer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var seen []string

	m := reviewMachine(t, statemachine.WithObserver[state, event](func(_ context.Context, from, to state, e event) {
		seen = append(seen, string(from)+"-"+string(e)+"->"+string(to))
	}))

	require.NoError(t, m.Fire(ctx, submit, nil))
	require.NoError(t, m.Fire(ctx, approve, nil))
	_ = m.Fire(ctx, reject, nil)

	assert.Equal(t, []string{"draft-submit->in_review", "in_review-approve->approved"}, seen)
}

func TestNew_TransitionOutOfTerminal(t *testing.T) {
	t.Parallel()
	_, err := statemachine.New(draft,
		statemachine.WithTerminal[state, event](published),
		statemachine.WithTransition[state, event](published, draft, submit),
	)
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	_, err = statemachine.New(draft,
		statemachine.WithTransition[state, event](published, draft, submit),
		statemachine.WithTerminal[state, event](published),
	)
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(draft, statemachine.WithTransitions([]statemachine.Transition[state, event]{
			{From: draft, To: inReview, Event: submit},
			{From: published, To: draft, Event: submit},
		}), statemachine.WithTerminal[state, event](published))
	})
}

func TestMachine_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := statemachine.MustNew(draft,
		statemachine.WithTransition[state, event](draft, inReview, submit),
		statemachine.WithTransition[state, event](inReview, draft, reject),
	)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = m.Fire(ctx, submit, nil)
				_ = m.Fire(ctx, reject, nil)
				_ = m.CanFire(ctx, submit, nil)
				_ = m.Current()
			}
		}()
	}
	wg.Wait()
	assert.Contains(t, []state{draft, inReview}, m.Current())
}
