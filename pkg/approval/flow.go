package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/statemachine"
	"github.com/dmitrymomot/mfakit/pkg/verifyclient"
)

// State is a stage of an approval flow.
type State string

const (
	StateResolving          State = "resolving"
	StateMatched            State = "matched"
	StateNotFound           State = "not_found"
	StateIncomplete         State = "incomplete"
	StateMethodSelected     State = "method_selected"
	StateLocalFailed        State = "local_failed"
	StateVerifying          State = "verifying"
	StateApproved           State = "approved"
	StateDenied             State = "denied"
	StateVerificationFailed State = "verification_failed"
)

var terminalStates = []State{StateNotFound, StateIncomplete, StateApproved, StateDenied, StateVerificationFailed}

// Terminal reports whether the flow is over in state s.
func (s State) Terminal() bool {
	return slices.Contains(terminalStates, s)
}

type event string

const (
	eventMatch      event = "match"
	eventMiss       event = "miss"
	eventIncomplete event = "incomplete"
	eventSelect     event = "select"
	eventDeny       event = "deny"
	eventVerified   event = "local_verified"
	eventFailed     event = "local_failed"
	eventAccepted   event = "accepted"
	eventRejected   event = "rejected"
)

// Approval is the server's answer to a successful submission.
type Approval struct {
	Method    account.Method
	Message   string
	Token     string
	ExpiresIn int
}

// Flow is one login approval. It is driven by a single caller; a fresh
// request needs a fresh flow.
type Flow struct {
	id       string
	approver *Approver
	req      *Request
	account  *account.Account
	tier     Tier
	methods  []account.Method
	sm       *statemachine.Machine[State, event]

	mu       sync.Mutex
	selected account.Method
}

func (a *Approver) newFlow(req *Request) *Flow {
	f := &Flow{id: newFlowID(), approver: a, req: req}

	enabled := statemachine.WithGuard[State, event](func(_ context.Context, _ State, _ event, data any) bool {
		m, ok := data.(account.Method)
		return ok && slices.Contains(f.methods, m)
	})
	f.sm = statemachine.MustNew(StateResolving,
		statemachine.WithTerminal[State, event](terminalStates...),
		statemachine.WithTransitions([]statemachine.Transition[State, event]{
			{From: StateResolving, To: StateMatched, Event: eventMatch},
			{From: StateResolving, To: StateNotFound, Event: eventMiss},
			{From: StateResolving, To: StateIncomplete, Event: eventIncomplete},

			{From: StateMatched, To: StateDenied, Event: eventDeny},
			{From: StateMethodSelected, To: StateDenied, Event: eventDeny},
			{From: StateLocalFailed, To: StateDenied, Event: eventDeny},

			{From: StateMethodSelected, To: StateVerifying, Event: eventVerified},
			{From: StateMethodSelected, To: StateLocalFailed, Event: eventFailed},

			{From: StateVerifying, To: StateApproved, Event: eventAccepted},
			{From: StateVerifying, To: StateVerificationFailed, Event: eventRejected},
		}),
		statemachine.WithTransition(StateMatched, StateMethodSelected, eventSelect, enabled),
		statemachine.WithTransition(StateMethodSelected, StateMethodSelected, eventSelect, enabled),
		statemachine.WithTransition(StateLocalFailed, StateMethodSelected, eventSelect, enabled),
		statemachine.WithObserver[State, event](func(ctx context.Context, from, to State, e event) {
			a.log.DebugContext(ctx, "approval state changed",
				slog.String("from", string(from)), logger.State(string(to)), slog.String("event", string(e)))
		}),
	)
	return f
}

// ID identifies the flow in logs.
func (f *Flow) ID() string { return f.id }

// Request returns the login request being approved.
func (f *Flow) Request() *Request { return f.req }

// Account returns the matched account, nil when none matched.
func (f *Flow) Account() *account.Account { return f.account }

// Tier returns the matching tier, TierNone when none matched.
func (f *Flow) Tier() Tier { return f.tier }

// State returns the current flow state.
func (f *Flow) State() State { return f.sm.Current() }

// Methods returns the methods selectable for this approval.
func (f *Flow) Methods() []account.Method { return slices.Clone(f.methods) }

// Selected returns the method Approve will use.
func (f *Flow) Selected() account.Method {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Select overrides the method used for approval. It is allowed after a match
// and after a failed local verification.
func (f *Flow) Select(ctx context.Context, m account.Method) error {
	ctx = f.context(ctx)
	if !m.Valid() {
		return fmt.Errorf("%w: %q", account.ErrUnknownMethod, string(m))
	}
	if err := f.fire(ctx, eventSelect, m); err != nil {
		if statemachine.IsTransitionRejectedError(err) {
			return fmt.Errorf("%w: %s", ErrMethodNotAvailable, m)
		}
		return err
	}

	f.mu.Lock()
	f.selected = m
	f.mu.Unlock()
	return nil
}

// Deny ends the flow without contacting the server.
func (f *Flow) Deny(ctx context.Context) error {
	ctx = f.context(ctx)
	if err := f.fire(ctx, eventDeny, nil); err != nil {
		return err
	}
	f.approver.log.InfoContext(ctx, "login denied", logger.AccountID(f.account.ID))
	return nil
}

// Approve verifies the selected method locally and, only if that succeeds,
// signs and submits the approval. ErrCanceled leaves the flow where it was.
// Local failures move it to StateLocalFailed, from where the user may retry
// or pick another method. The remote outcome is terminal.
func (f *Flow) Approve(ctx context.Context) (*Approval, error) {
	ctx = f.context(ctx)

	switch f.State() {
	case StateMatched, StateLocalFailed:
		if err := f.Select(ctx, f.Selected()); err != nil {
			return nil, err
		}
	case StateMethodSelected:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, f.State())
	}

	m := f.Selected()
	log := f.approver.log.With(logger.AccountID(f.account.ID), logger.Method(string(m)))

	code, err := f.approver.handlers[m](ctx, f.account)
	if errors.Is(err, ErrCanceled) {
		log.InfoContext(ctx, "approval canceled")
		return nil, ErrCanceled
	}
	if err != nil {
		log.InfoContext(ctx, "local verification failed", logger.Error(err))
		_ = f.fire(ctx, eventFailed, nil)
		return nil, err
	}
	_ = f.fire(ctx, eventVerified, nil)

	approval, err := f.submit(ctx, m, code)
	if err != nil {
		log.WarnContext(ctx, "login approval failed", logger.Error(err))
		_ = f.fire(ctx, eventRejected, nil)
		return nil, err
	}
	_ = f.fire(ctx, eventAccepted, nil)
	log.InfoContext(ctx, "login approved")
	return approval, nil
}

func (f *Flow) submit(ctx context.Context, m account.Method, code string) (*Approval, error) {
	a := f.approver
	opts := append([]verifyclient.Option{verifyclient.WithClock(a.now)}, a.clientOpts...)
	client, err := a.newClient(ClientConfig(f.account, a.deviceIDFor()), opts...)
	if err != nil {
		return nil, errors.Join(ErrClientNotInitialized, err)
	}

	res := client.VerifyLogin(ctx, verifyclient.VerifyRequest{
		Email:     f.req.Email,
		TempToken: f.req.TempToken,
		Method:    string(m),
		TOTPCode:  code,
	})
	if !res.Success {
		cause := res.Err
		if cause == nil {
			cause = ErrRemoteRejection
		}
		return nil, &RemoteError{Message: res.Message, StatusCode: res.StatusCode, Err: cause}
	}
	return &Approval{Method: m, Message: res.Message, Token: res.Token, ExpiresIn: res.ExpiresIn}, nil
}

func (f *Flow) fire(ctx context.Context, e event, data any) error {
	if err := f.sm.Fire(ctx, e, data); err != nil {
		if statemachine.IsTransitionRejectedError(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return nil
}

func (f *Flow) context(ctx context.Context) context.Context {
	return logger.WithFlowID(ctx, f.id)
}
