package applock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/hasher"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
	"github.com/dmitrymomot/mfakit/pkg/logger"
)

// Storage keys. Credential keys carry no "@" prefix so a namespaced or
// encrypted store can treat them as secrets.
const (
	ConfigKey       = "@app_lock_config"
	LastActivityKey = "@last_activity"
	PINKey          = "app_lock_pin"
	PatternKey      = "app_lock_pattern"
	FailuresKey     = "@app_lock_failures"
)

const (
	// MaxAttempts failed unlocks in a row trigger a lockout.
	MaxAttempts = 5
	// LockoutDuration is how long Unlock refuses input after MaxAttempts failures.
	LockoutDuration = 30 * time.Second
)

type failures struct {
	Count       int   `json:"count"`
	LockedUntil int64 `json:"lockedUntil,omitempty"` // unix milliseconds
}

// Type is how the app is unlocked.
type Type string

const (
	TypePIN       Type = "pin"
	TypePattern   Type = "pattern"
	TypeBiometric Type = "biometric"
	TypeNone      Type = "none"
)

func (t Type) Valid() bool {
	switch t {
	case TypePIN, TypePattern, TypeBiometric, TypeNone:
		return true
	}
	return false
}

// Timeouts lists the allowed idle timeouts in seconds. Zero locks on every
// return to the foreground.
var Timeouts = []int{0, 30, 60, 300, 900}

// DefaultTimeout is used until a timeout is configured.
const DefaultTimeout = 60

// Config is the persisted app lock setting.
type Config struct {
	Enabled bool `json:"enabled"`
	Type    Type `json:"type"`
	Timeout int  `json:"timeout"` // seconds
}

// DefaultConfig is the setting of a fresh install.
func DefaultConfig() Config {
	return Config{Type: TypeNone, Timeout: DefaultTimeout}
}

func (c Config) validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(c.Type))
	}
	if !slices.Contains(Timeouts, c.Timeout) {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeout, c.Timeout)
	}
	return nil
}

// Update changes a subset of the configuration. Nil fields keep their value.
type Update struct {
	Enabled *bool
	Type    *Type
	Timeout *int
}

// Lock is the app-level lock guarding the whole authenticator.
type Lock struct {
	kv  kvstore.Store
	now func() time.Time
	log *slog.Logger
}

type Option func(*Lock)

func WithClock(now func() time.Time) Option {
	return func(l *Lock) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Lock) {
		if log != nil {
			l.log = log
		}
	}
}

func New(kv kvstore.Store, opts ...Option) *Lock {
	l := &Lock{kv: kv, now: time.Now, log: logger.Discard()}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(logger.Component("applock"))
	return l
}

// Config returns the stored configuration, or DefaultConfig when none is stored.
func (l *Lock) Config(ctx context.Context) (Config, error) {
	cfg := DefaultConfig()
	err := kvstore.GetJSON(ctx, l.kv, ConfigKey, &cfg)
	switch {
	case err == nil:
		if cfg.Type == "" {
			cfg.Type = TypeNone
		}
		return cfg, nil
	case errors.Is(err, kvstore.ErrNotFound):
		return DefaultConfig(), nil
	default:
		return Config{}, errors.Join(ErrStorage, err)
	}
}

// Configure applies u. Enabling a PIN or pattern lock requires the
// credential to be stored first.
func (l *Lock) Configure(ctx context.Context, u Update) (Config, error) {
	cfg, err := l.Config(ctx)
	if err != nil {
		return Config{}, err
	}
	if u.Enabled != nil {
		cfg.Enabled = *u.Enabled
	}
	if u.Type != nil {
		cfg.Type = *u.Type
	}
	if u.Timeout != nil {
		cfg.Timeout = *u.Timeout
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.Enabled {
		ok, err := l.HasCredentials(ctx, cfg.Type)
		if err != nil {
			return Config{}, err
		}
		if !ok && cfg.Type != TypeNone {
			return Config{}, fmt.Errorf("%w: %s", ErrNotSetUp, cfg.Type)
		}
	}

	if err := kvstore.SetJSON(ctx, l.kv, ConfigKey, cfg); err != nil {
		return Config{}, errors.Join(ErrStorage, err)
	}
	l.log.InfoContext(ctx, "app lock configured",
		slog.Bool("enabled", cfg.Enabled), slog.String("type", string(cfg.Type)), slog.Int("timeout", cfg.Timeout))
	return cfg, nil
}

// SetPIN stores the app PIN, replacing any previous one.
func (l *Lock) SetPIN(ctx context.Context, pin string) error {
	if err := credential.ValidatePIN(pin); err != nil {
		return err
	}
	return l.putHash(ctx, PINKey, pin)
}

// SetPattern stores the app unlock pattern on the default grid.
func (l *Lock) SetPattern(ctx context.Context, points []credential.Point) error {
	if !credential.ValidatePattern(points, credential.DefaultGridSize) {
		return credential.ErrInvalidPattern
	}
	return l.putHash(ctx, PatternKey, credential.PatternToString(points))
}

func (l *Lock) VerifyPIN(ctx context.Context, pin string) error {
	return l.verify(ctx, PINKey, pin)
}

func (l *Lock) VerifyPattern(ctx context.Context, points []credential.Point) error {
	return l.verify(ctx, PatternKey, credential.PatternToString(points))
}

// HasCredentials reports whether the lock of type t can be used. Biometric
// relies on the device and is always considered available.
func (l *Lock) HasCredentials(ctx context.Context, t Type) (bool, error) {
	var key string
	switch t {
	case TypeBiometric:
		return true, nil
	case TypePIN:
		key = PINKey
	case TypePattern:
		key = PatternKey
	default:
		return false, nil
	}
	ok, err := kvstore.Exists(ctx, l.kv, key)
	if err != nil {
		return false, errors.Join(ErrStorage, err)
	}
	return ok, nil
}

// Touch records user activity now.
func (l *Lock) Touch(ctx context.Context) error {
	ts := strconv.FormatInt(l.now().UnixMilli(), 10)
	if err := l.kv.Set(ctx, LastActivityKey, []byte(ts)); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// LastActivity returns the last recorded activity. Without a record it
// returns now, so a fresh install is not locked out by its own timeout.
func (l *Lock) LastActivity(ctx context.Context) (time.Time, error) {
	raw, err := l.kv.Get(ctx, LastActivityKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return l.now(), nil
	}
	if err != nil {
		return time.Time{}, errors.Join(ErrStorage, err)
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return l.now(), nil
	}
	return time.UnixMilli(ms), nil
}

// ShouldLock reports whether the app must show the lock screen now.
func (l *Lock) ShouldLock(ctx context.Context) (bool, error) {
	cfg, err := l.Config(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.Enabled || cfg.Type == TypeNone {
		return false, nil
	}
	if cfg.Timeout == 0 {
		return true, nil
	}
	last, err := l.LastActivity(ctx)
	if err != nil {
		return false, err
	}
	return l.now().Sub(last) >= time.Duration(cfg.Timeout)*time.Second, nil
}

// Unlock verifies input against the configured lock type and records
// activity on success. Biometric locks are verified by the platform, so
// Unlock only accepts PIN and pattern input. After MaxAttempts consecutive
// failures it returns a *LockedOutError until LockoutDuration has passed.
func (l *Lock) Unlock(ctx context.Context, pin string, pattern []credential.Point) error {
	cfg, err := l.Config(ctx)
	if err != nil {
		return err
	}
	f, err := l.failures(ctx)
	if err != nil {
		return err
	}
	now := l.now()
	if until := time.UnixMilli(f.LockedUntil); f.LockedUntil != 0 && now.Before(until) {
		return &LockedOutError{RetryAfter: until.Sub(now)}
	}

	switch cfg.Type {
	case TypePIN:
		err = l.VerifyPIN(ctx, pin)
	case TypePattern:
		err = l.VerifyPattern(ctx, pattern)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidType, cfg.Type)
	}

	if errors.Is(err, ErrLocalVerificationFailed) {
		f.Count++
		f.LockedUntil = 0
		if f.Count >= MaxAttempts {
			f = failures{LockedUntil: now.Add(LockoutDuration).UnixMilli()}
		}
		l.log.WarnContext(ctx, "app unlock failed", slog.Int("failures", f.Count), logger.Error(err))
		if serr := kvstore.SetJSON(ctx, l.kv, FailuresKey, f); serr != nil {
			return errors.Join(err, ErrStorage, serr)
		}
		if f.LockedUntil != 0 {
			return errors.Join(err, &LockedOutError{RetryAfter: LockoutDuration})
		}
		return &AttemptError{Remaining: MaxAttempts - f.Count, Err: err}
	}
	if err != nil {
		return err
	}

	if err := l.kv.Delete(ctx, FailuresKey); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return l.Touch(ctx)
}

func (l *Lock) failures(ctx context.Context) (failures, error) {
	var f failures
	err := kvstore.GetJSON(ctx, l.kv, FailuresKey, &f)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return failures{}, errors.Join(ErrStorage, err)
	}
	return f, nil
}

// ClearCredentials removes the app PIN and pattern.
func (l *Lock) ClearCredentials(ctx context.Context) error {
	var errs []error
	for _, key := range []string{PINKey, PatternKey} {
		if err := l.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrStorage}, errs...)...)
	}
	return nil
}

// Reset disables the lock and removes every stored setting and credential.
func (l *Lock) Reset(ctx context.Context) error {
	var errs []error
	for _, key := range []string{ConfigKey, LastActivityKey, FailuresKey} {
		if err := l.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := l.ClearCredentials(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrStorage}, errs...)...)
	}
	l.log.InfoContext(ctx, "app lock reset")
	return nil
}

func (l *Lock) putHash(ctx context.Context, key, plaintext string) error {
	if err := l.kv.Set(ctx, key, []byte(hasher.Hash(plaintext))); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (l *Lock) verify(ctx context.Context, key, plaintext string) error {
	digest, err := l.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ErrNotSetUp
	}
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !hasher.Verify(plaintext, string(digest)) {
		return ErrLocalVerificationFailed
	}
	return nil
}
