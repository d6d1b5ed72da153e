package verifyclient

import "errors"

var (
	// ErrClientNotInitialized is returned by every call on a nil or
	// zero-value Client. It indicates a wiring bug, not a runtime failure.
	ErrClientNotInitialized = errors.New("verification client not initialized")
	ErrInvalidConfig        = errors.New("invalid verification client configuration")

	// Failures reported through Result.Err
	ErrNetworkFailure  = errors.New("verification server unreachable")
	ErrTimeout         = errors.New("verification request timed out")
	ErrRemoteRejection = errors.New("verification rejected by server")
	ErrInvalidResponse = errors.New("invalid verification server response")
)
