package credential

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/hasher"
	"github.com/dmitrymomot/mfakit/pkg/logger"
)

const (
	MinPINLength = 4
	MaxPINLength = 6

	MinPasskeyLength   = 6
	DefaultPasskeyName = "My Passkey"
)

// Service implements PIN, pattern and passkey setup and verification on top of
// a Store. Verification methods return nil on a match,
// ErrLocalVerificationFailed on a mismatch and ErrNotFound when nothing is set
// up for the account.
type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = logger.OrDiscard(l)
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("credential"))
	return s
}

// ValidatePIN checks that pin is 4 to 6 ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// SetupPIN stores a new PIN for the account, replacing any previous one.
func (s *Service) SetupPIN(ctx context.Context, accountID, pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	return s.put(ctx, KindPIN, accountID, Record{Hash: hasher.Hash(pin)})
}

func (s *Service) VerifyPIN(ctx context.Context, accountID, pin string) error {
	return s.verify(ctx, KindPIN, accountID, pin)
}

func (s *Service) HasPIN(ctx context.Context, accountID string) (bool, error) {
	return s.store.Exists(ctx, KindPIN, accountID)
}

func (s *Service) RemovePIN(ctx context.Context, accountID string) error {
	return s.Remove(ctx, KindPIN, accountID)
}

// SetupPattern stores a pattern drawn on a gridSize grid; a non-positive
// gridSize means DefaultGridSize.
func (s *Service) SetupPattern(ctx context.Context, accountID string, points []Point, gridSize int) error {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if !ValidatePattern(points, gridSize) {
		return ErrInvalidPattern
	}
	return s.put(ctx, KindPattern, accountID, Record{
		Hash:     hasher.Hash(PatternToString(points)),
		GridSize: gridSize,
	})
}

func (s *Service) VerifyPattern(ctx context.Context, accountID string, points []Point) error {
	return s.verify(ctx, KindPattern, accountID, PatternToString(points))
}

func (s *Service) HasPattern(ctx context.Context, accountID string) (bool, error) {
	return s.store.Exists(ctx, KindPattern, accountID)
}

func (s *Service) RemovePattern(ctx context.Context, accountID string) error {
	return s.Remove(ctx, KindPattern, accountID)
}

// PatternGridSize returns the grid size the account's pattern was drawn on,
// DefaultGridSize when no pattern is stored.
func (s *Service) PatternGridSize(ctx context.Context, accountID string) (int, error) {
	rec, err := s.store.Get(ctx, KindPattern, accountID)
	if errors.Is(err, ErrNotFound) {
		return DefaultGridSize, nil
	}
	if err != nil {
		return DefaultGridSize, err
	}
	return rec.GridSize, nil
}

// CreatePasskey stores a named passkey for the account. An empty name means
// DefaultPasskeyName.
func (s *Service) CreatePasskey(ctx context.Context, accountID, passkey, name string) error {
	if len(passkey) < MinPasskeyLength {
		return ErrInvalidPasskey
	}
	if name == "" {
		name = DefaultPasskeyName
	}
	return s.put(ctx, KindPasskey, accountID, Record{
		ID:   uuid.NewString(),
		Name: name,
		Hash: hasher.Hash(passkey),
	})
}

func (s *Service) VerifyPasskey(ctx context.Context, accountID, passkey string) error {
	return s.verify(ctx, KindPasskey, accountID, passkey)
}

func (s *Service) HasPasskey(ctx context.Context, accountID string) (bool, error) {
	return s.store.Exists(ctx, KindPasskey, accountID)
}

// PasskeyInfo returns the stored passkey metadata or ErrNotFound.
func (s *Service) PasskeyInfo(ctx context.Context, accountID string) (*Record, error) {
	return s.store.Get(ctx, KindPasskey, accountID)
}

// UpdatePasskey replaces the passkey after checking the current one.
// The existing name is kept.
func (s *Service) UpdatePasskey(ctx context.Context, accountID, oldPasskey, newPasskey string) error {
	if len(newPasskey) < MinPasskeyLength {
		return ErrInvalidPasskey
	}
	if err := s.VerifyPasskey(ctx, accountID, oldPasskey); err != nil {
		return err
	}

	info, err := s.PasskeyInfo(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.DeletePasskey(ctx, accountID); err != nil {
		return err
	}
	return s.CreatePasskey(ctx, accountID, newPasskey, info.Name)
}

func (s *Service) DeletePasskey(ctx context.Context, accountID string) error {
	return s.Remove(ctx, KindPasskey, accountID)
}

// Has reports whether a credential of kind exists for the account.
func (s *Service) Has(ctx context.Context, kind Kind, accountID string) (bool, error) {
	return s.store.Exists(ctx, kind, accountID)
}

// Remove deletes one credential.
func (s *Service) Remove(ctx context.Context, kind Kind, accountID string) error {
	if err := s.store.Delete(ctx, kind, accountID); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "credential removed", logger.AccountID(accountID), logger.Method(string(kind)))
	return nil
}

// RemoveAll deletes every credential kind for the account. All kinds are
// attempted even if one fails.
func (s *Service) RemoveAll(ctx context.Context, accountID string) error {
	var errs []error
	for _, kind := range Kinds {
		if err := s.Remove(ctx, kind, accountID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) put(ctx context.Context, kind Kind, accountID string, rec Record) error {
	rec.Kind = kind
	rec.AccountID = accountID
	rec.CreatedAt = s.now()
	if err := s.store.Put(ctx, kind, accountID, rec); err != nil {
		s.log.ErrorContext(ctx, "failed to store credential",
			logger.AccountID(accountID), logger.Method(string(kind)), logger.Error(err))
		return err
	}
	s.log.InfoContext(ctx, "credential stored", logger.AccountID(accountID), logger.Method(string(kind)))
	return nil
}

func (s *Service) verify(ctx context.Context, kind Kind, accountID, plaintext string) error {
	rec, err := s.store.Get(ctx, kind, accountID)
	if err != nil {
		return err
	}
	if !hasher.Verify(plaintext, rec.Hash) {
		s.log.InfoContext(ctx, "local verification failed", logger.AccountID(accountID), logger.Method(string(kind)))
		return ErrLocalVerificationFailed
	}
	return nil
}
