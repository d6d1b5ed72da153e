package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/credential"
)

// handler verifies one auth method locally. It returns the TOTP code to
// submit, empty for every other method.
type handler func(ctx context.Context, acc *account.Account) (string, error)

func (a *Approver) methodHandlers() map[account.Method]handler {
	return map[account.Method]handler{
		account.MethodTOTP:       a.approveTOTP,
		account.MethodPIN:        a.approvePIN,
		account.MethodPattern:    a.approvePattern,
		account.MethodPasskey:    a.approvePasskey,
		account.MethodBiometric:  a.approvePlatform(account.MethodBiometric, "Authenticate to approve login request"),
		account.MethodScreenLock: a.approvePlatform(account.MethodScreenLock, "Unlock to approve login request"),
	}
}

// approveTOTP shows the current code and submits it only once the user confirms.
func (a *Approver) approveTOTP(ctx context.Context, acc *account.Account) (string, error) {
	if a.prompter == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, account.MethodTOTP)
	}
	code, err := a.codes.Code(acc.Secret, acc.TOTPParams())
	if err != nil {
		return "", err
	}
	ok, err := a.prompter.ConfirmCode(ctx, acc, code, a.codes.Remaining(acc.Period))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrCanceled
	}
	return code, nil
}

func (a *Approver) approvePIN(ctx context.Context, acc *account.Account) (string, error) {
	if err := a.requireCredential(ctx, credential.KindPIN, acc.ID); err != nil {
		return "", err
	}
	pin, err := a.prompter.PromptPIN(ctx, acc)
	if err != nil {
		return "", err
	}
	return "", localResult(a.creds.VerifyPIN(ctx, acc.ID, pin))
}

func (a *Approver) approvePattern(ctx context.Context, acc *account.Account) (string, error) {
	if err := a.requireCredential(ctx, credential.KindPattern, acc.ID); err != nil {
		return "", err
	}
	grid, err := a.creds.PatternGridSize(ctx, acc.ID)
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	points, err := a.prompter.PromptPattern(ctx, acc, grid)
	if err != nil {
		return "", err
	}
	return "", localResult(a.creds.VerifyPattern(ctx, acc.ID, points))
}

func (a *Approver) approvePasskey(ctx context.Context, acc *account.Account) (string, error) {
	if err := a.requireCredential(ctx, credential.KindPasskey, acc.ID); err != nil {
		return "", err
	}
	passkey, err := a.prompter.PromptPasskey(ctx, acc)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(passkey) == "" {
		return "", fmt.Errorf("%w: empty passkey", ErrLocalVerificationFailed)
	}
	return "", localResult(a.creds.VerifyPasskey(ctx, acc.ID, passkey))
}

// approvePlatform delegates to the OS prompt; no app-managed secret is involved.
func (a *Approver) approvePlatform(m account.Method, reason string) handler {
	return func(ctx context.Context, _ *account.Account) (string, error) {
		if a.platform == nil {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, m)
		}
		err := a.platform.Authenticate(ctx, m, reason)
		switch {
		case err == nil:
			return "", nil
		case errors.Is(err, ErrCanceled):
			return "", ErrCanceled
		default:
			return "", errors.Join(ErrLocalVerificationFailed, err)
		}
	}
}

// requireCredential checks the collaborators and the stored credential
// before the user is prompted.
func (a *Approver) requireCredential(ctx context.Context, kind credential.Kind, accountID string) error {
	if a.creds == nil || a.prompter == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, kind)
	}
	ok, err := a.creds.Has(ctx, kind, accountID)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCredentialNotSetUp, kind)
	}
	return nil
}

func localResult(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credential.ErrNotFound):
		return errors.Join(ErrCredentialNotSetUp, err)
	case errors.Is(err, ErrLocalVerificationFailed):
		return err
	default:
		return errors.Join(ErrStorage, err)
	}
}
