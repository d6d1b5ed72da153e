package account

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Account is one enrolled identity bound to a TOTP secret. JSON field names
// match the persisted collection.
type Account struct {
	ID        string `json:"id"`
	Issuer    string `json:"issuer"`
	Label     string `json:"account"`
	Secret    string `json:"secret"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
	Algorithm string `json:"algorithm,omitempty"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds

	AppID             string `json:"appId,omitempty"`
	APIURL            string `json:"apiUrl,omitempty"`
	IsCentralizedAuth bool   `json:"isCentralizedAuth,omitempty"`

	AuthMethods         []Method `json:"authMethods,omitempty"`
	PreferredAuthMethod Method   `json:"preferredAuthMethod,omitempty"`
}

// Created returns CreatedAt as a time.
func (a *Account) Created() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// EnabledMethods returns the enabled methods. Records written before method
// selection existed have none stored and mean TOTP only.
func (a *Account) EnabledMethods() []Method {
	if len(a.AuthMethods) == 0 {
		return []Method{MethodTOTP}
	}
	return slices.Clone(a.AuthMethods)
}

func (a *Account) HasMethod(m Method) bool {
	return slices.Contains(a.EnabledMethods(), m)
}

// DefaultMethod is the preferred method when it is still enabled, otherwise
// the first enabled one.
func (a *Account) DefaultMethod() Method {
	methods := a.EnabledMethods()
	if a.PreferredAuthMethod != "" && slices.Contains(methods, a.PreferredAuthMethod) {
		return a.PreferredAuthMethod
	}
	return methods[0]
}

// HasEmailLabel reports whether the label looks like an email address.
// Only such accounts get a push binding.
func (a *Account) HasEmailLabel() bool {
	return strings.Contains(a.Label, "@")
}

// MissingRemoteFields names the remote-binding fields a login approval needs
// but the account lacks. Empty means the account can approve logins.
func (a *Account) MissingRemoteFields() []string {
	var missing []string
	if a.AppID == "" {
		missing = append(missing, "appId")
	}
	if a.APIURL == "" {
		missing = append(missing, "apiUrl")
	}
	if a.Secret == "" {
		missing = append(missing, "secret")
	}
	return missing
}

// TOTPParams returns the code parameters for this account.
func (a *Account) TOTPParams() totp.Params {
	return totp.Params{Digits: a.Digits, Period: a.Period, Algorithm: a.Algorithm}
}

// Validate checks field ranges and the method set. Failures wrap ErrValidation,
// except an undecodable secret, which wraps totp.ErrInvalidSecretFormat.
func (a *Account) Validate() error {
	if a.Secret == "" {
		return fmt.Errorf("%w: secret is required", ErrValidation)
	}
	if _, err := totp.DecodeSecret(a.Secret); err != nil {
		return err
	}
	if a.Digits < totp.MinDigits || a.Digits > totp.MaxDigits {
		return fmt.Errorf("%w: digits must be between %d and %d, got %d", ErrValidation, totp.MinDigits, totp.MaxDigits, a.Digits)
	}
	if a.Period < totp.MinPeriod || a.Period > totp.MaxPeriod {
		return fmt.Errorf("%w: period must be between %d and %d seconds, got %d", ErrValidation, totp.MinPeriod, totp.MaxPeriod, a.Period)
	}
	if a.Algorithm != "" {
		switch a.Algorithm {
		case "SHA1", "SHA256", "SHA512":
		default:
			return errors.Join(ErrValidation, totp.ErrUnsupportedAlgorithm)
		}
	}
	if a.IsCentralizedAuth && a.AppID == "" {
		return fmt.Errorf("%w: centralized accounts need an app id", ErrValidation)
	}

	seen := make(map[Method]struct{}, len(a.AuthMethods))
	for _, m := range a.AuthMethods {
		if !m.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrValidation, ErrUnknownMethod, string(m))
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("%w: method %q listed twice", ErrValidation, string(m))
		}
		seen[m] = struct{}{}
	}
	if a.PreferredAuthMethod != "" && !a.HasMethod(a.PreferredAuthMethod) {
		return fmt.Errorf("%w: %w: preferred method %q", ErrValidation, ErrMethodNotEnabled, string(a.PreferredAuthMethod))
	}
	return nil
}

// ValidateCentralized lists the problems that keep a centralized account from
// working with its remote service. It is stricter than MissingRemoteFields.
func ValidateCentralized(a *Account) []string {
	var problems []string
	if a.AppID == "" {
		problems = append(problems, "Missing app_id")
	}
	if a.APIURL == "" {
		problems = append(problems, "Missing apiUrl")
	}
	if len(a.Secret) < 16 {
		problems = append(problems, "Invalid or missing secret")
	}
	if !a.HasEmailLabel() {
		problems = append(problems, "Invalid account email")
	}
	return problems
}

// Draft carries the user-supplied fields of a new account.
type Draft struct {
	Issuer    string
	Label     string
	Secret    string
	Digits    int
	Period    int
	Algorithm string

	AppID             string
	APIURL            string
	IsCentralizedAuth bool

	AuthMethods         []Method
	PreferredAuthMethod Method
}

// account builds the account a draft describes, applying defaults.
func (d Draft) account() Account {
	a := Account{
		Issuer:              strings.TrimSpace(d.Issuer),
		Label:               strings.TrimSpace(d.Label),
		Secret:              totp.NormalizeSecret(d.Secret),
		Digits:              d.Digits,
		Period:              d.Period,
		Algorithm:           strings.ToUpper(d.Algorithm),
		AppID:               d.AppID,
		APIURL:              strings.TrimRight(d.APIURL, "/"),
		IsCentralizedAuth:   d.IsCentralizedAuth,
		AuthMethods:         slices.Clone(d.AuthMethods),
		PreferredAuthMethod: d.PreferredAuthMethod,
	}
	if a.Digits == 0 {
		a.Digits = totp.DefaultDigits
	}
	if a.Period == 0 {
		a.Period = totp.DefaultPeriod
	}
	if a.Algorithm == totp.DefaultAlgorithm {
		a.Algorithm = ""
	}
	if len(a.AuthMethods) == 0 {
		a.AuthMethods = []Method{MethodTOTP}
	}
	return a
}
