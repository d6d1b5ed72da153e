package signature

import "errors"

var (
	ErrMissingDeviceID = errors.New("device id is required")
	ErrMissingSecret   = errors.New("signing secret is required")
	ErrUnknownScheme   = errors.New("unknown signature scheme")
	ErrDeviceIDStorage = errors.New("failed to persist device id")
)
