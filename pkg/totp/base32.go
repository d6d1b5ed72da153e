package totp

import (
	"crypto/rand"
	"errors"
	"strings"
)

// Alphabet is the RFC 4648 base32 alphabet used by authenticator secrets.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// DefaultSecretLength is the number of characters produced by GenerateSecret
// when no length is given.
const DefaultSecretLength = 32

// decodeTable maps an ASCII byte to its 5-bit value, or 0xFF when the byte is
// outside the alphabet.
var decodeTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xFF
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = byte(i)
	}
	return t
}()

// NormalizeSecret uppercases the secret and removes whitespace and trailing
// padding, giving the canonical form stored on an account.
func NormalizeSecret(secret string) string {
	secret = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, secret)
	secret = strings.TrimRight(secret, "=")
	return strings.ToUpper(secret)
}

// DecodeSecret decodes a base32 secret into the raw HMAC key.
// Bits are accumulated MSB-first, a byte is emitted whenever at least eight
// bits are buffered and trailing bits that do not form a full byte are dropped.
func DecodeSecret(secret string) ([]byte, error) {
	secret = NormalizeSecret(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}

	out := make([]byte, 0, len(secret)*5/8)
	var buffer uint32
	var bits uint

	for i := 0; i < len(secret); i++ {
		v := decodeTable[secret[i]]
		if v == 0xFF {
			return nil, ErrInvalidSecretFormat
		}
		buffer = (buffer << 5) | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
		}
		// Only the not-yet-emitted low bits matter
		buffer &= (1 << bits) - 1
	}

	return out, nil
}

// EncodeSecret encodes raw bytes as an unpadded base32 string.
func EncodeSecret(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow((len(data)*8 + 4) / 5)

	var buffer uint32
	var bits uint
	for _, b := range data {
		buffer = (buffer << 8) | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(Alphabet[(buffer>>bits)&0x1F])
		}
		buffer &= (1 << bits) - 1
	}
	if bits > 0 {
		sb.WriteByte(Alphabet[(buffer<<(5-bits))&0x1F])
	}

	return sb.String()
}

// GenerateSecret returns a random secret of the given number of alphabet
// characters. A non-positive length falls back to DefaultSecretLength.
func GenerateSecret(length int) (string, error) {
	if length <= 0 {
		length = DefaultSecretLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}

	// 256 is a multiple of 32, so masking keeps the distribution uniform
	for i := range buf {
		buf[i] = Alphabet[buf[i]&0x1F]
	}
	return string(buf), nil
}
