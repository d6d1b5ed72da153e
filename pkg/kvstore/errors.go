package kvstore

import "errors"

var (
	ErrNotFound                = errors.New("key not found")
	ErrInvalidKey              = errors.New("invalid key: must not be empty")
	ErrStorage                 = errors.New("storage operation failed")
	ErrEncryptionFailed        = errors.New("encryption failed")
	ErrDecryptionFailed        = errors.New("decryption failed")
	ErrInvalidCiphertext       = errors.New("invalid ciphertext format")
	ErrInvalidEncryptionKey    = errors.New("invalid encryption key: must be 32 bytes")
	ErrKeyDerivationFailed     = errors.New("key derivation failed")
	ErrFailedToParseRedisURL   = errors.New("failed to parse redis connection string")
	ErrRedisNotReady           = errors.New("redis did not become ready within the given time period")
	ErrUnsupportedStoreBackend = errors.New("unsupported store backend")
	ErrCorruptedStoreFile      = errors.New("store file is corrupted")
)
