// Package hasher is the one-way digest shared by local credentials and the
// device signature protocol.
//
// Digests are unsalted, single-pass SHA-256 rendered as lowercase hex. That
// matches what existing installs have stored and what the remote verifier
// recomputes, so the construction cannot change without a migration. Verify
// compares in constant time.
package hasher

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Size is the length of a hex digest returned by Hash.
const Size = sha256.Size * 2

// Hash returns the hex SHA-256 digest of plaintext.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether plaintext hashes to digest.
// Comparison time does not depend on where the digests differ.
func Verify(plaintext, digest string) bool {
	computed := Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
