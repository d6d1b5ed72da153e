package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrFailedToValidateTOTP      = errors.New("failed to validate TOTP")
	ErrFailedToGenerateTOTP      = errors.New("failed to generate TOTP")
	ErrMissingSecret             = errors.New("missing secret")
	ErrInvalidSecret             = errors.New("invalid secret")
	ErrInvalidSecretFormat       = errors.New("invalid secret format: not a base32 string")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrMissingIssuer             = errors.New("missing issuer")
	ErrInvalidOTP                = errors.New("invalid OTP format")
	ErrInvalidDigits             = errors.New("invalid digits: must be between 6 and 8")
	ErrInvalidPeriod             = errors.New("invalid period: must be between 15 and 120 seconds")
	ErrUnsupportedAlgorithm      = errors.New("unsupported HMAC algorithm")
	ErrInvalidSecretLength       = errors.New("invalid secret length, must be greater than 0")
)
