package account

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/logger"
)

// Outcome describes what a method toggle did.
type Outcome int

const (
	// OutcomeUnchanged means the method was already in the requested state.
	OutcomeUnchanged Outcome = iota
	OutcomeEnabled
	OutcomeDisabled
	// OutcomeSetupRequired means a credential must be created first. For PIN
	// and pattern the flag is left off until CompleteSetup succeeds; for a
	// passkey the flag is already on.
	OutcomeSetupRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEnabled:
		return "enabled"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeSetupRequired:
		return "setup_required"
	default:
		return "unchanged"
	}
}

// ToggleMethod disables m when it is enabled and enables it otherwise.
func (r *Registry) ToggleMethod(ctx context.Context, id string, m Method) (*Account, Outcome, error) {
	acc, err := r.Get(ctx, id)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	if acc.HasMethod(m) {
		acc, err := r.DisableMethod(ctx, id, m)
		if err != nil {
			return nil, OutcomeUnchanged, err
		}
		return acc, OutcomeDisabled, nil
	}
	return r.EnableMethod(ctx, id, m)
}

// DisableMethod turns m off. The last enabled method cannot be disabled.
// Turning off PIN, pattern or passkey deletes the stored credential, and a
// disabled preferred method clears the preference.
func (r *Registry) DisableMethod(ctx context.Context, id string, m Method) (*Account, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(m))
	}
	acc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	methods := acc.EnabledMethods()
	if !slices.Contains(methods, m) {
		return acc, nil
	}
	if len(methods) == 1 {
		return nil, ErrLastMethod
	}

	acc.AuthMethods = slices.DeleteFunc(methods, func(x Method) bool { return x == m })
	if acc.PreferredAuthMethod == m {
		acc.PreferredAuthMethod = ""
	}
	if err := r.Update(ctx, acc); err != nil {
		return nil, err
	}

	// The flag is already off, so a leftover credential is unreachable.
	if kind, ok := m.CredentialKind(); ok && r.creds != nil {
		if err := r.creds.Remove(ctx, kind, id); err != nil {
			r.log.ErrorContext(ctx, "credential cleanup failed", logger.AccountID(id), logger.Method(string(m)), logger.Error(err))
		}
	}

	r.log.InfoContext(ctx, "auth method disabled", logger.AccountID(id), logger.Method(string(m)))
	return acc, nil
}

// EnableMethod turns m on when its prerequisites are met.
//
//   - biometric and screen lock need the CapabilityChecker to report the
//     device capable, otherwise ErrCapabilityUnavailable and no change.
//   - PIN and pattern need a stored credential, otherwise OutcomeSetupRequired
//     and no change; the setup flow calls CompleteSetup.
//   - passkey without a credential is enabled and reports OutcomeSetupRequired.
func (r *Registry) EnableMethod(ctx context.Context, id string, m Method) (*Account, Outcome, error) {
	if !m.Valid() {
		return nil, OutcomeUnchanged, fmt.Errorf("%w: %q", ErrUnknownMethod, string(m))
	}
	acc, err := r.Get(ctx, id)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}
	if acc.HasMethod(m) {
		return acc, OutcomeUnchanged, nil
	}

	if m.RequiresCapability() {
		ok, err := r.capable(ctx, m)
		if err != nil {
			return nil, OutcomeUnchanged, err
		}
		if !ok {
			return nil, OutcomeUnchanged, ErrCapabilityUnavailable
		}
	}

	outcome := OutcomeEnabled
	if kind, ok := m.CredentialKind(); ok {
		exists, err := r.hasCredential(ctx, kind, id)
		if err != nil {
			return nil, OutcomeUnchanged, err
		}
		if !exists {
			if m != MethodPasskey {
				return acc, OutcomeSetupRequired, nil
			}
			outcome = OutcomeSetupRequired
		}
	}

	acc.AuthMethods = append(acc.EnabledMethods(), m)
	if err := r.Update(ctx, acc); err != nil {
		return nil, OutcomeUnchanged, err
	}

	r.log.InfoContext(ctx, "auth method enabled", logger.AccountID(id), logger.Method(string(m)))
	return acc, outcome, nil
}

// CompleteSetup finishes enabling a credential-backed method: it checks the
// account exists, runs setup to store the credential and only then sets the
// flag. A setup error leaves the account unchanged.
func (r *Registry) CompleteSetup(ctx context.Context, id string, m Method, setup func(ctx context.Context, accountID string) error) (*Account, error) {
	if _, ok := m.CredentialKind(); !ok {
		return nil, fmt.Errorf("%w: %q has no credential to set up", ErrUnknownMethod, string(m))
	}
	acc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := setup(ctx, id); err != nil {
		return nil, err
	}

	if acc.HasMethod(m) {
		return acc, nil
	}
	acc.AuthMethods = append(acc.EnabledMethods(), m)
	if err := r.Update(ctx, acc); err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "auth method set up", logger.AccountID(id), logger.Method(string(m)))
	return acc, nil
}

func (r *Registry) capable(ctx context.Context, m Method) (bool, error) {
	if r.caps == nil {
		return false, nil
	}
	return r.caps.Available(ctx, m)
}

func (r *Registry) hasCredential(ctx context.Context, kind credential.Kind, id string) (bool, error) {
	if r.creds == nil {
		return false, nil
	}
	return r.creds.Has(ctx, kind, id)
}
