package credential

import "errors"

var (
	// Validation errors, returned before anything is written
	ErrInvalidPIN     = errors.New("PIN must be 4-6 digits")
	ErrInvalidPattern = errors.New("pattern must have at least 4 unique points within grid bounds")
	ErrInvalidPasskey = errors.New("passkey must be at least 6 characters long")
	ErrUnknownKind    = errors.New("unknown credential kind")

	ErrNotFound                = errors.New("credential not found")
	ErrLocalVerificationFailed = errors.New("local verification failed")
	ErrStorage                 = errors.New("credential storage failed")
)
