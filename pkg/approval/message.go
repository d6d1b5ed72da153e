package approval

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage renders err as text for the person approving the login. Each
// failure class gets its own wording so "not found" and "re-scan required"
// are never confused.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("This account is not set up in your Authentication App.\n\n"+
			"Looking for: %s\nApp ID: %s\n\n"+
			"Please scan the setup QR code from Settings first.", notFound.Email, notFound.AppID)
	}

	var incomplete *IncompleteError
	if errors.As(err, &incomplete) {
		return fmt.Sprintf("This account was added with an older version and is missing required information (%s).\n\n"+
			"To fix this:\n"+
			"1. Delete this account from the Authenticator\n"+
			"2. Open the application's settings\n"+
			"3. Scan the setup QR code again", strings.Join(incomplete.Missing, ", "))
	}

	var remote *RemoteError
	if errors.As(err, &remote) && errors.Is(remote.Err, ErrRemoteRejection) && remote.Message != "" {
		return remote.Message
	}

	switch {
	case errors.Is(err, ErrCanceled):
		return "Approval canceled. Nothing was sent."
	case errors.Is(err, ErrRequestExpired):
		return "This login request has expired. Start the login again to get a new request."
	case errors.Is(err, ErrInvalidPayload):
		return "This QR code is not a valid login request."
	case errors.Is(err, ErrCredentialNotSetUp):
		return "The selected method is not set up for this account. Set it up in account settings or choose another method."
	case errors.Is(err, ErrMethodNotAvailable):
		return "The selected method is not enabled for this account."
	case errors.Is(err, ErrUnsupportedMethod):
		return "The selected method is not available on this device."
	case errors.Is(err, ErrLocalVerificationFailed):
		return "Verification failed. Please try again."
	case errors.Is(err, ErrInvalidSecretFormat):
		return "The stored secret for this account is invalid. Remove the account and scan the setup QR code again."
	case errors.Is(err, ErrNetworkFailure):
		return "Could not reach the verification server. Check your connection and try again."
	case errors.Is(err, ErrRemoteRejection):
		return "The server rejected this approval."
	case errors.Is(err, ErrClientNotInitialized):
		return "The account's server settings are invalid. Scan the setup QR code again."
	case errors.Is(err, ErrStorage):
		return "Could not read the authenticator's stored data."
	case errors.Is(err, ErrInvalidState):
		return "This login request has already been handled."
	default:
		return "Failed to approve login. Please try again."
	}
}
