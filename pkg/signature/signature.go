package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/hasher"
)

// Scheme selects how the signature digest is computed.
type Scheme string

const (
	// SchemeLegacy hashes message and secret concatenated, in one SHA-256
	// pass. This is what the deployed verification server recomputes.
	SchemeLegacy Scheme = "legacy"
	// SchemeHMAC is HMAC-SHA256 keyed with the secret.
	SchemeHMAC Scheme = "hmac"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ParseScheme maps a configuration value to a Scheme. Empty means legacy.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeLegacy:
		return SchemeLegacy, nil
	case SchemeHMAC:
		return SchemeHMAC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// DeviceSignature is the proof attached to every call to the verification
// server. It is produced per request and never cached.
type DeviceSignature struct {
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

type options struct {
	scheme Scheme
	now    func() time.Time
}

// Option configures Sign and Verify.
type Option func(*options)

// WithScheme selects the digest construction. Unknown values fall back to legacy.
func WithScheme(s Scheme) Option {
	return func(o *options) {
		if s == SchemeHMAC {
			o.scheme = SchemeHMAC
		}
	}
}

// WithClock overrides the time source used for the signed timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{scheme: SchemeLegacy, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Sign signs "deviceID|timestamp|method" with secret at the current time.
func Sign(deviceID, method, secret string, opts ...Option) (DeviceSignature, error) {
	if deviceID == "" {
		return DeviceSignature{}, ErrMissingDeviceID
	}
	if secret == "" {
		return DeviceSignature{}, ErrMissingSecret
	}
	o := newOptions(opts)

	ts := FormatTimestamp(o.now())
	return DeviceSignature{
		DeviceID:  deviceID,
		Timestamp: ts,
		Signature: digest(o.scheme, Message(deviceID, ts, method), secret),
	}, nil
}

// Verify recomputes the signature for the given fields and compares it with
// sig in constant time.
func Verify(deviceID, timestamp, method, sig, secret string, opts ...Option) bool {
	if deviceID == "" || secret == "" || sig == "" {
		return false
	}
	o := newOptions(opts)
	want := digest(o.scheme, Message(deviceID, timestamp, method), secret)
	return hasher.Equal(want, sig)
}

// Message builds the signed string.
func Message(deviceID, timestamp, method string) string {
	return deviceID + "|" + timestamp + "|" + method
}

// FormatTimestamp renders t the way signatures carry it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// AuthToken renders the bearer value "<timestamp>:<signature>".
func AuthToken(sig DeviceSignature) string {
	return sig.Timestamp + ":" + sig.Signature
}

func digest(scheme Scheme, message, secret string) string {
	if scheme == SchemeHMAC {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(message))
		return hex.EncodeToString(mac.Sum(nil))
	}
	return hasher.Hash(message + secret)
}
