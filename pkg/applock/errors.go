package applock

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/credential"
)

var (
	ErrInvalidType    = errors.New("invalid app lock type")
	ErrInvalidTimeout = errors.New("app lock timeout must be one of 0, 30, 60, 300 or 900 seconds")
	ErrNotSetUp       = errors.New("app lock credential not set up")
	ErrStorage        = errors.New("app lock storage failed")

	ErrLocalVerificationFailed = credential.ErrLocalVerificationFailed
)

// ErrLockedOut is matched by every *LockedOutError.
var ErrLockedOut = errors.New("too many failed unlock attempts")

// LockedOutError reports how long Unlock keeps refusing input.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrLockedOut, e.RetryAfter.Round(time.Second))
}

func (e *LockedOutError) Unwrap() error { return ErrLockedOut }

// AttemptError is a failed unlock that has not yet triggered a lockout.
type AttemptError struct {
	Remaining int
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%v, %d attempts remaining before lockout", e.Err, e.Remaining)
}

func (e *AttemptError) Unwrap() error { return e.Err }
