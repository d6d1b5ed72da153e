package approval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/totp"
	"github.com/dmitrymomot/mfakit/pkg/verifyclient"
)

var (
	ErrInvalidPayload     = errors.New("invalid login request payload")
	ErrRequestExpired     = errors.New("login request expired")
	ErrAccountNotFound    = errors.New("no matching account")
	ErrAccountIncomplete  = errors.New("account is missing remote binding fields")
	ErrMethodNotAvailable = errors.New("auth method not enabled for this account")
	ErrCredentialNotSetUp = errors.New("credential not set up for this account")
	ErrUnsupportedMethod  = errors.New("auth method not supported on this device")
	ErrCanceled           = errors.New("approval canceled")
	ErrInvalidState       = errors.New("operation not allowed in current approval state")
	ErrStorage            = errors.New("approval storage failed")
)

// Errors from the layers below, re-exported so callers can classify every
// approval failure against this package alone.
var (
	ErrInvalidSecretFormat     = totp.ErrInvalidSecretFormat
	ErrValidation              = account.ErrValidation
	ErrLocalVerificationFailed = credential.ErrLocalVerificationFailed
	ErrNetworkFailure          = verifyclient.ErrNetworkFailure
	ErrRemoteRejection         = verifyclient.ErrRemoteRejection
	ErrClientNotInitialized    = verifyclient.ErrClientNotInitialized
)

// NotFoundError reports the email and app id no account matched.
type NotFoundError struct {
	Email string
	AppID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: email %q, app id %q", ErrAccountNotFound, e.Email, e.AppID)
}

func (e *NotFoundError) Unwrap() error { return ErrAccountNotFound }

// IncompleteError reports which remote binding fields the matched account lacks.
type IncompleteError struct {
	AccountID string
	Missing   []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: account %s lacks %s", ErrAccountIncomplete, e.AccountID, strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrAccountIncomplete }

// RemoteError carries the server's response for a failed submission.
// Err wraps ErrNetworkFailure or ErrRemoteRejection.
type RemoteError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }
