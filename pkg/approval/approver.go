package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/credential"
	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/signature"
	"github.com/dmitrymomot/mfakit/pkg/totp"
	"github.com/dmitrymomot/mfakit/pkg/verifyclient"
)

// AccountSource lists the enrolled accounts. *account.Registry satisfies it.
type AccountSource interface {
	List(ctx context.Context) ([]account.Account, error)
}

// Verifier checks locally stored credentials. *credential.Service satisfies it.
type Verifier interface {
	Has(ctx context.Context, kind credential.Kind, accountID string) (bool, error)
	VerifyPIN(ctx context.Context, accountID, pin string) error
	VerifyPattern(ctx context.Context, accountID string, points []credential.Point) error
	VerifyPasskey(ctx context.Context, accountID, passkey string) error
	PatternGridSize(ctx context.Context, accountID string) (int, error)
}

// Prompter collects user input for the methods that need it. Returning
// ErrCanceled from any prompt abandons the approval without side effects.
type Prompter interface {
	// ConfirmCode shows the current TOTP code and reports whether the user
	// confirmed submitting it.
	ConfirmCode(ctx context.Context, acc *account.Account, code string, remaining int) (bool, error)
	PromptPIN(ctx context.Context, acc *account.Account) (string, error)
	PromptPattern(ctx context.Context, acc *account.Account, gridSize int) ([]credential.Point, error)
	PromptPasskey(ctx context.Context, acc *account.Account) (string, error)
}

// PlatformAuthenticator runs the OS biometric or device-credential prompt.
// A nil error means the user authenticated; ErrCanceled means they backed out.
type PlatformAuthenticator interface {
	Authenticate(ctx context.Context, m account.Method, reason string) error
}

// ClientFactory builds the verification client for a matched account.
type ClientFactory func(cfg verifyclient.Config, opts ...verifyclient.Option) (*verifyclient.Client, error)

// Approver resolves login requests to accounts and runs approval flows.
type Approver struct {
	accounts   AccountSource
	creds      Verifier
	prompter   Prompter
	platform   PlatformAuthenticator
	deviceID   string
	newClient  ClientFactory
	clientOpts []verifyclient.Option
	codes      *totp.Generator
	handlers   map[account.Method]handler
	now        func() time.Time
	log        *slog.Logger
}

// Option configures an Approver.
type Option func(*Approver)

// WithCredentials sets the local credential verifier used by PIN, pattern
// and passkey approvals.
func WithCredentials(v Verifier) Option {
	return func(a *Approver) {
		a.creds = v
	}
}

// WithPrompter sets the user input collaborator.
func WithPrompter(p Prompter) Option {
	return func(a *Approver) {
		a.prompter = p
	}
}

// WithPlatformAuthenticator sets the OS authentication collaborator used by
// biometric and screen lock approvals.
func WithPlatformAuthenticator(p PlatformAuthenticator) Option {
	return func(a *Approver) {
		a.platform = p
	}
}

// WithDeviceID sets the install's device id. Without it every flow signs
// with a freshly generated id.
func WithDeviceID(id string) Option {
	return func(a *Approver) {
		a.deviceID = id
	}
}

// WithClientFactory overrides how verification clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(a *Approver) {
		if f != nil {
			a.newClient = f
		}
	}
}

// WithClientOptions are passed to every verification client the approver builds.
func WithClientOptions(opts ...verifyclient.Option) Option {
	return func(a *Approver) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// WithClock overrides the time source for codes, expiry, defaults and signature
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Approver) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger for flow diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Approver) {
		if l != nil {
			a.log = l
		}
	}
}

// NewApprover creates an approver over the given accounts.
func NewApprover(accounts AccountSource, opts ...Option) *Approver {
	a := &Approver{
		accounts:  accounts,
		newClient: verifyclient.New,
		now:       time.Now,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("approval"))
	a.codes = totp.NewGenerator(totp.WithClock(a.now))
	a.handlers = a.methodHandlers()

	for _, m := range account.Methods {
		if _, ok := a.handlers[m]; !ok {
			panic(fmt.Sprintf("approval: no handler for auth method %q", m))
		}
	}
	return a
}

// ClientConfig returns the verification client configuration for acc.
func ClientConfig(acc *account.Account, deviceID string) verifyclient.Config {
	return verifyclient.Config{
		APIURL:   acc.APIURL,
		AppID:    acc.AppID,
		Secret:   acc.Secret,
		DeviceID: deviceID,
	}
}

// BeginPayload parses a login payload and begins its approval.
func (a *Approver) BeginPayload(ctx context.Context, data []byte) (*Flow, error) {
	req, err := parseLoginPayload(data, a.now())
	if err != nil {
		return nil, err
	}
	return a.Begin(ctx, req)
}

// Begin resolves req to an account. When no account matches, or the match
// lacks its remote binding, the returned flow is already terminal and the
// error is a *NotFoundError or *IncompleteError. Expired requests and
// storage failures return a nil flow.
func (a *Approver) Begin(ctx context.Context, req *Request) (*Flow, error) {
	if req == nil {
		return nil, ErrInvalidPayload
	}
	if req.Expired(a.now()) {
		return nil, ErrRequestExpired
	}

	f := a.newFlow(req)
	ctx = f.context(ctx)

	accounts, err := a.accounts.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	match, ok := Match(accounts, req)
	if !ok {
		a.log.WarnContext(ctx, "no account for login request",
			logger.Email(req.Email), logger.AppID(req.AppID), slog.Int("accounts", len(accounts)))
		_ = f.fire(ctx, eventMiss, nil)
		return f, &NotFoundError{Email: req.Email, AppID: req.AppID}
	}

	acc := match.Account
	f.account = acc
	f.tier = match.Tier
	a.log.InfoContext(ctx, "login request matched",
		logger.AccountID(acc.ID), logger.Tier(match.Tier.String()))

	if missing := acc.MissingRemoteFields(); len(missing) > 0 {
		_ = f.fire(ctx, eventIncomplete, nil)
		return f, &IncompleteError{AccountID: acc.ID, Missing: missing}
	}

	f.methods = acc.EnabledMethods()
	f.selected = acc.DefaultMethod()
	_ = f.fire(ctx, eventMatch, nil)
	return f, nil
}

func (a *Approver) deviceIDFor() string {
	if a.deviceID != "" {
		return a.deviceID
	}
	return signature.NewDeviceID()
}

func newFlowID() string {
	return uuid.NewString()
}
