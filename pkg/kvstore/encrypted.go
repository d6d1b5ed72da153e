package kvstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required master key length.
	KeySize = 32

	// hkdfInfo separates the at-rest key from any other use of the master key.
	hkdfInfo = "mfakit-kvstore-v1"
)

// Encrypted seals values with AES-256-GCM before handing them to the wrapped
// store. Stored format: nonce || ciphertext || tag.
type Encrypted struct {
	next Store
	aead cipher.AEAD
}

// NewEncrypted derives the data key from masterKey and wraps next.
func NewEncrypted(next Store, masterKey []byte) (*Encrypted, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidEncryptionKey
	}

	key, err := deriveKey(masterKey)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return &Encrypted{next: next, aead: aead}, nil
}

// GenerateKey returns a random master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	nonceSize := e.aead.NonceSize()
	if len(sealed) < nonceSize+e.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plain, err := e.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plain, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errors.Join(ErrEncryptionFailed, err)
	}
	sealed := e.aead.Seal(nonce, nonce, value, []byte(key))

	return e.next.Set(ctx, key, sealed)
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.next.Delete(ctx, key)
}

func deriveKey(masterKey []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, nil, []byte(hkdfInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}
