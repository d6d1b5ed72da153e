package totp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const uriPrefix = "otpauth://totp/"

// TOTPParams contains the parameters for TOTP URI generation
type TOTPParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required TOTP parameters are present and valid
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p TOTPParams) GetDefaults() TOTPParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GetTOTPURI creates a properly encoded TOTP URI for use with authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", strconv.Itoa(params.Digits))
	query.Set("period", strconv.Itoa(params.Period))

	return uriPrefix + label + "?" + query.Encode(), nil
}

// Key is the result of parsing an otpauth URI.
type Key struct {
	Issuer    string
	Account   string
	Secret    string // normalized base32
	Algorithm string
	Digits    int
	Period    int
}

// ParseURI parses an otpauth://totp URI. It returns false for anything that
// is not a recognizable TOTP key, including a URI without a secret, so callers
// can fall through to other QR formats instead of failing.
func ParseURI(uri string) (*Key, bool) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, uriPrefix) {
		return nil, false
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, false
	}

	label, err := url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), "/"))
	if err != nil {
		return nil, false
	}

	key := &Key{Account: label}
	if issuer, account, ok := strings.Cut(label, ":"); ok {
		key.Issuer = strings.TrimSpace(issuer)
		key.Account = strings.TrimSpace(account)
	}

	q := u.Query()
	secret := NormalizeSecret(q.Get("secret"))
	if secret == "" {
		return nil, false
	}
	key.Secret = secret

	// The explicit query parameter wins over the label prefix
	if issuer := q.Get("issuer"); issuer != "" {
		key.Issuer = issuer
	}

	key.Digits = intParam(q.Get("digits"), DefaultDigits)
	key.Period = intParam(q.Get("period"), DefaultPeriod)
	key.Algorithm = strings.ToUpper(q.Get("algorithm"))
	if key.Algorithm == "" {
		key.Algorithm = DefaultAlgorithm
	}

	return key, true
}

func intParam(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
