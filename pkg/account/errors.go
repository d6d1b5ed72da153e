package account

import "errors"

var (
	ErrValidation    = errors.New("account validation failed")
	ErrNotFound      = errors.New("account not found")
	ErrUnknownMethod = errors.New("unknown authentication method")
	ErrStorage       = errors.New("account storage failed")

	// Method toggling
	ErrLastMethod            = errors.New("at least one authentication method must stay enabled")
	ErrMethodNotEnabled      = errors.New("authentication method is not enabled")
	ErrCapabilityUnavailable = errors.New("authentication method is not available on this device")

	// Enrollment
	ErrUnrecognizedQR = errors.New("not a recognized account QR code")
	ErrEmptyQRContent = errors.New("QR content cannot be empty")
	ErrQRGeneration   = errors.New("failed to generate QR code")
)
