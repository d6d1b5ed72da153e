package account

import (
	"encoding/json"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"

	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Setup QR payload types.
const (
	SetupTypeCentralized = "tni-bouquet-account"
	SetupTypeGeneric     = "account"
)

// DefaultQRSize is the PNG edge length used when ExportQR gets a size <= 0.
const DefaultQRSize = 256

// SetupPayload is the JSON carried by a centralized-auth setup QR code.
type SetupPayload struct {
	Type   string `json:"type"`
	Issuer string `json:"issuer"`
	Label  string `json:"account"`
	Secret string `json:"secret"`
	AppID  string `json:"app_id"`
	APIURL string `json:"apiUrl"`
}

// ParseSetupQR recognizes a setup payload. Every field is required; the app id
// may be spelled app_id or appId. Anything else yields false, never an error,
// so callers can fall through to other formats.
func ParseSetupQR(data string) (*SetupPayload, bool) {
	var raw struct {
		SetupPayload
		AppIDCamel string `json:"appId"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &raw); err != nil {
		return nil, false
	}

	p := raw.SetupPayload
	if p.AppID == "" {
		p.AppID = raw.AppIDCamel
	}
	if p.Type != SetupTypeCentralized && p.Type != SetupTypeGeneric {
		return nil, false
	}
	if p.Issuer == "" || p.Label == "" || p.Secret == "" || p.AppID == "" || p.APIURL == "" {
		return nil, false
	}
	p.Secret = totp.NormalizeSecret(p.Secret)
	return &p, true
}

// DraftFromSetup converts a setup payload into a centralized account draft
// with default TOTP parameters and TOTP as the only method.
func DraftFromSetup(p *SetupPayload) Draft {
	return Draft{
		Issuer:            p.Issuer,
		Label:             p.Label,
		Secret:            p.Secret,
		Digits:            totp.DefaultDigits,
		Period:            totp.DefaultPeriod,
		AppID:             p.AppID,
		APIURL:            p.APIURL,
		IsCentralizedAuth: true,
		AuthMethods:       []Method{MethodTOTP},
	}
}

// DraftFromURI converts an otpauth:// URI into a local account draft.
func DraftFromURI(uri string) (Draft, bool) {
	key, ok := totp.ParseURI(uri)
	if !ok {
		return Draft{}, false
	}
	return Draft{
		Issuer:    key.Issuer,
		Label:     key.Account,
		Secret:    key.Secret,
		Digits:    key.Digits,
		Period:    key.Period,
		Algorithm: key.Algorithm,
	}, true
}

// ParseEnrollment accepts scanned or pasted QR content: a setup payload first,
// then an otpauth URI. Unknown content returns ErrUnrecognizedQR.
func ParseEnrollment(data string) (Draft, error) {
	if p, ok := ParseSetupQR(data); ok {
		return DraftFromSetup(p), nil
	}
	if d, ok := DraftFromURI(strings.TrimSpace(data)); ok {
		return d, nil
	}
	return Draft{}, ErrUnrecognizedQR
}

// SetupPayload rebuilds the setup QR payload for a centralized account.
func (a *Account) SetupPayload() SetupPayload {
	return SetupPayload{
		Type:   SetupTypeCentralized,
		Issuer: a.Issuer,
		Label:  a.Label,
		Secret: a.Secret,
		AppID:  a.AppID,
		APIURL: a.APIURL,
	}
}

// TOTPURI renders the account as an otpauth:// URI.
func (a *Account) TOTPURI() (string, error) {
	return totp.GetTOTPURI(totp.TOTPParams{
		Secret:      a.Secret,
		AccountName: a.Label,
		Issuer:      a.Issuer,
		Algorithm:   a.Algorithm,
		Digits:      a.Digits,
		Period:      a.Period,
	})
}

// ExportContent returns what an export QR for the account should encode:
// the setup payload for centralized accounts, the otpauth URI otherwise.
func (a *Account) ExportContent() (string, error) {
	if a.IsCentralizedAuth {
		b, err := json.Marshal(a.SetupPayload())
		if err != nil {
			return "", errors.Join(ErrQRGeneration, err)
		}
		return string(b), nil
	}
	return a.TOTPURI()
}

// ExportQR encodes content as a PNG QR code of size x size pixels.
func ExportQR(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyQRContent
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrQRGeneration, err)
	}
	return png, nil
}
