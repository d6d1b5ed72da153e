package account

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/kvstore"
	"github.com/dmitrymomot/mfakit/pkg/logger"
)

const (
	// StorageKey holds the whole account collection.
	StorageKey = "@authenticator_accounts"
	// StorageVersion is written alongside the collection.
	StorageVersion = "1.0"
)

type document struct {
	Accounts []Account `json:"accounts"`
	Version  string    `json:"version"`
}

// PushRegistrar binds an email address to this device's push token.
type PushRegistrar interface {
	Register(ctx context.Context, email string) error
	Unregister(ctx context.Context, email string) error
}

// Credentials is the part of credential.Service the registry needs.
type Credentials interface {
	Has(ctx context.Context, kind credential.Kind, accountID string) (bool, error)
	Remove(ctx context.Context, kind credential.Kind, accountID string) error
	RemoveAll(ctx context.Context, accountID string) error
}

// CapabilityChecker reports whether the device can perform a hardware-backed
// method such as biometric or screen lock.
type CapabilityChecker interface {
	Available(ctx context.Context, m Method) (bool, error)
}

// Registry owns the persisted account collection. Every mutation reads the
// whole collection and writes it back; concurrent writers are last-wins.
type Registry struct {
	kv    kvstore.Store
	push  PushRegistrar
	creds Credentials
	caps  CapabilityChecker
	now   func() time.Time
	newID func(d Draft) string
	log   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

func WithPushRegistrar(p PushRegistrar) Option {
	return func(r *Registry) { r.push = p }
}

// WithCredentials enables credential cleanup on delete and setup checks when
// enabling PIN, pattern or passkey.
func WithCredentials(c Credentials) Option {
	return func(r *Registry) { r.creds = c }
}

func WithCapabilityChecker(c CapabilityChecker) Option {
	return func(r *Registry) { r.caps = c }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the id scheme, mostly for tests.
func WithIDGenerator(fn func(d Draft) string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = logger.OrDiscard(l) }
}

// NewRegistry returns a registry persisted in kv.
func NewRegistry(kv kvstore.Store, opts ...Option) *Registry {
	r := &Registry{
		kv:    kv,
		now:   time.Now,
		newID: NewID,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("registry"))
	return r
}

// NewID returns "<appId>_<uuid>" for centralized drafts, so the app id can be
// found inside the id, and a bare UUID otherwise.
func NewID(d Draft) string {
	if d.IsCentralizedAuth && d.AppID != "" {
		return d.AppID + "_" + uuid.NewString()
	}
	return uuid.NewString()
}

// List returns every account in enrollment order.
func (r *Registry) List(ctx context.Context) ([]Account, error) {
	var doc document
	err := kvstore.GetJSON(ctx, r.kv, StorageKey, &doc)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	if doc.Accounts == nil {
		return []Account{}, nil
	}
	return doc.Accounts, nil
}

// Get returns the account with id or ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*Account, error) {
	return r.Find(ctx, func(a *Account) bool { return a.ID == id })
}

// Find returns the first account matching pred or ErrNotFound.
func (r *Registry) Find(ctx context.Context, pred func(*Account) bool) (*Account, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if pred(&accounts[i]) {
			return &accounts[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindAll returns every account matching pred.
func (r *Registry) FindAll(ctx context.Context, pred func(*Account) bool) ([]Account, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(accounts, func(a Account) bool { return !pred(&a) }), nil
}

// Add validates the draft and appends the new account. Push registration
// failures are logged and do not fail enrollment.
func (r *Registry) Add(ctx context.Context, d Draft) (*Account, error) {
	acc := d.account()
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	acc.ID = r.newID(d)
	acc.CreatedAt = r.now().UnixMilli()
	accounts = append(accounts, acc)

	if err := r.save(ctx, accounts); err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "account added",
		logger.AccountID(acc.ID), logger.AppID(acc.AppID), logger.Email(acc.Label))

	if r.push != nil && acc.HasEmailLabel() {
		if err := r.push.Register(ctx, acc.Label); err != nil {
			r.log.WarnContext(ctx, "push registration failed", logger.AccountID(acc.ID), logger.Error(err))
		}
	}
	return &acc, nil
}

// Update replaces the stored account with the same id.
func (r *Registry) Update(ctx context.Context, acc *Account) error {
	if err := acc.Validate(); err != nil {
		return err
	}

	accounts, err := r.List(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == acc.ID })
	if i < 0 {
		return ErrNotFound
	}
	accounts[i] = *acc

	return r.save(ctx, accounts)
}

// Delete removes the account, unregisters its push binding and removes its
// PIN, pattern and passkey. Cleanup failures are logged; the account is gone
// either way.
func (r *Registry) Delete(ctx context.Context, id string) error {
	accounts, err := r.List(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	acc := accounts[i]

	if r.push != nil && acc.HasEmailLabel() {
		if err := r.push.Unregister(ctx, acc.Label); err != nil {
			r.log.WarnContext(ctx, "push unregistration failed", logger.AccountID(id), logger.Error(err))
		}
	}

	if err := r.save(ctx, slices.Delete(accounts, i, i+1)); err != nil {
		return err
	}

	if r.creds != nil {
		if err := r.creds.RemoveAll(ctx, id); err != nil {
			r.log.ErrorContext(ctx, "credential cleanup failed", logger.AccountID(id), logger.Error(err))
		}
	}
	r.log.InfoContext(ctx, "account deleted", logger.AccountID(id))
	return nil
}

// Clear removes every account. Credentials are not touched.
func (r *Registry) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, StorageKey); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// SetPreferred makes m the default method for approvals. An empty method
// clears the preference.
func (r *Registry) SetPreferred(ctx context.Context, id string, m Method) (*Account, error) {
	acc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m != "" && !acc.HasMethod(m) {
		return nil, ErrMethodNotEnabled
	}
	acc.PreferredAuthMethod = m
	if err := r.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (r *Registry) save(ctx context.Context, accounts []Account) error {
	doc := document{Accounts: accounts, Version: StorageVersion}
	if err := kvstore.SetJSON(ctx, r.kv, StorageKey, doc); err != nil {
		r.log.ErrorContext(ctx, "failed to save accounts", logger.Error(err))
		return errors.Join(ErrStorage, err)
	}
	return nil
}
