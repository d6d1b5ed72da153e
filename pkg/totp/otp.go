package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238 standard)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)

	MinDigits = 6
	MaxDigits = 8
	MinPeriod = 15
	MaxPeriod = 120
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	// pow10 avoids floating point in the modulo step; digits never exceed 10
	pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000}
)

// Params controls code generation. Zero values fall back to RFC 6238 defaults.
type Params struct {
	Period    int       // Step size in seconds
	Digits    int       // Code length
	Algorithm string    // SHA1, SHA256 or SHA512
	Time      time.Time // Moment to generate the code for; zero means now
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p Params) GetDefaults() Params {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.Time.IsZero() {
		p.Time = time.Now()
	}
	return p
}

// Validate checks the numeric parameters against the ranges accepted by
// authenticator accounts.
func (p Params) Validate() error {
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return ErrInvalidDigits
	}
	if p.Period < MinPeriod || p.Period > MaxPeriod {
		return ErrInvalidPeriod
	}
	if _, err := hashFunc(p.Algorithm); err != nil {
		return err
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation for cryptographic strength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return EncodeSecret(secret), nil
}

// Generate produces the RFC 6238 code for the given base32 secret.
func Generate(secret string, params Params) (string, error) {
	params = params.GetDefaults()
	if err := params.Validate(); err != nil {
		return "", err
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateTOTP, err)
	}

	return generateWithKey(key, params)
}

func generateWithKey(key []byte, params Params) (string, error) {
	code, err := GenerateHOTPWithAlgorithm(key, Counter(params.Time, params.Period), params.Digits, params.Algorithm)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateTOTP, err)
	}
	return FormatCode(code, params.Digits), nil
}

// Counter returns the RFC 6238 time step for t. Integer division only, so
// codes match any independent verifier bit for bit.
func Counter(t time.Time, period int) uint64 {
	if period <= 0 {
		period = DefaultPeriod
	}
	unix := t.Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / uint64(period)
}

// RemainingSeconds returns how long the code valid at now stays valid.
// The result is always in [1, period].
func RemainingSeconds(period int, now time.Time) int {
	if period <= 0 {
		period = DefaultPeriod
	}
	p := int64(period)
	return period - int((now.Unix()%p+p)%p)
}

// ValidateTOTP validates the TOTP code provided by the user.
func ValidateTOTP(secret, otp string) (bool, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return false, ErrInvalidSecret
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return false, errors.Join(ErrFailedToValidateTOTP, err)
	}

	otp = strings.TrimSpace(otp)
	if len(otp) != DefaultDigits {
		return false, ErrInvalidOTP
	}
	if _, err := strconv.ParseUint(otp, 10, 32); err != nil {
		return false, ErrInvalidOTP
	}

	counter := Counter(time.Now(), DefaultPeriod)

	// Accept codes from previous, current, and next 30-second windows to handle clock drift
	for i := -1; i <= 1; i++ {
		if counter == 0 && i < 0 {
			continue
		}
		code := GenerateHOTP(key, counter+uint64(int64(i)), DefaultDigits)
		if hmac.Equal([]byte(FormatCode(code, DefaultDigits)), []byte(otp)) {
			return true, nil
		}
	}

	return false, nil
}

// GenerateTOTP generates a time-based one-time password for the current 30-second window.
// The secret must be a valid Base32-encoded string.
func GenerateTOTP(secret string) (string, error) {
	return Generate(secret, Params{})
}

// GenerateTOTPWithTime generates a TOTP code for the 30-second window containing the specified time.
// Useful for testing or generating codes for specific moments.
func GenerateTOTPWithTime(secret string, t time.Time) (string, error) {
	return Generate(secret, Params{Time: t})
}

// GenerateHOTP implements RFC 4226 HMAC-based One-Time Password algorithm with HMAC-SHA1.
func GenerateHOTP(key []byte, counter uint64, digits int) uint32 {
	code, _ := GenerateHOTPWithAlgorithm(key, counter, digits, DefaultAlgorithm)
	return code
}

// GenerateHOTPWithAlgorithm converts a counter value into a numeric code
// using the named HMAC algorithm.
func GenerateHOTPWithAlgorithm(key []byte, counter uint64, digits int, algorithm string) (uint32, error) {
	newHash, err := hashFunc(algorithm)
	if err != nil {
		return 0, err
	}
	if digits <= 0 || digits >= len(pow10) {
		return 0, ErrInvalidDigits
	}

	// Counter as big-endian 8-byte array (RFC 4226 requirement)
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := sum[len(sum)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	return code % pow10[digits], nil
}

// FormatCode left-pads the numeric code with zeros to the requested width.
func FormatCode(code uint32, digits int) string {
	s := strconv.FormatUint(uint64(code), 10)
	if len(s) >= digits {
		return s
	}
	return strings.Repeat("0", digits-len(s)) + s
}

func hashFunc(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(strings.ReplaceAll(algorithm, "-", "")) {
	case "", "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA512":
		return sha512.New, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
