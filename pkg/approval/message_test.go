package approval_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mfakit/pkg/approval"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "canceled", err: approval.ErrCanceled, want: "Approval canceled. Nothing was sent."},
		{name: "wrapped local failure", err: fmt.Errorf("pin: %w", approval.ErrLocalVerificationFailed), want: "Verification failed. Please try again."},
		{name: "remote with message", err: &approval.RemoteError{Message: "Session not found", Err: approval.ErrRemoteRejection}, want: "Session not found"},
		{name: "remote without message", err: &approval.RemoteError{Err: approval.ErrRemoteRejection}, want: "The server rejected this approval."},
		{name: "network failure ignores message", err: &approval.RemoteError{Message: "dial tcp", Err: approval.ErrNetworkFailure}, want: "Could not reach the verification server. Check your connection and try again."},
		{name: "unknown", err: errors.New("boom"), want: "Failed to approve login. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, approval.UserMessage(tt.err))
		})
	}
}

func TestUserMessage_Distinct(t *testing.T) {
	t.Parallel()
	errs := []error{
		&approval.NotFoundError{Email: "a@b.com", AppID: "app_42"},
		&approval.IncompleteError{AccountID: "x", Missing: []string{"apiUrl"}},
		approval.ErrRequestExpired,
		approval.ErrInvalidPayload,
		approval.ErrCredentialNotSetUp,
		approval.ErrMethodNotAvailable,
		approval.ErrUnsupportedMethod,
		approval.ErrInvalidSecretFormat,
		approval.ErrClientNotInitialized,
		approval.ErrStorage,
		approval.ErrInvalidState,
	}
	seen := make(map[string]error, len(errs))
	for _, err := range errs {
		msg := approval.UserMessage(err)
		if prev, dup := seen[msg]; dup {
			t.Errorf("%v and %v render the same message %q", prev, err, msg)
		}
		seen[msg] = err
	}
}

func TestUserMessage_Incomplete(t *testing.T) {
	t.Parallel()
	msg := approval.UserMessage(&approval.IncompleteError{AccountID: "x", Missing: []string{"appId", "apiUrl"}})
	assert.Contains(t, msg, "appId, apiUrl")
	assert.Contains(t, msg, "Scan the setup QR code again")
}
