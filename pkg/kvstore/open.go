package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string `env:"AUTH_STORE" envDefault:"file"`
	Path      string `env:"AUTH_STORE_PATH" envDefault:"./data/authenticator.yaml"`
	Key       string `env:"AUTH_STORE_KEY"`       // base64 32-byte master key; empty disables encryption
	Namespace string `env:"AUTH_STORE_NAMESPACE"` // key prefix, mostly for a shared Redis
	Redis     RedisConfig
}

// Open builds the store described by cfg. The returned closer releases
// backend resources and is never nil.
func Open(ctx context.Context, cfg Config) (Store, io.Closer, error) {
	var (
		store  Store
		closer io.Closer = nopCloser{}
	)

	switch cfg.Backend {
	case BackendMemory:
		store = NewMemory()
	case "", BackendFile:
		f, err := NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store = f
	case BackendRedis:
		client, err := Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		r := NewRedis(client)
		store, closer = r, r
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedStoreBackend, cfg.Backend)
	}

	if cfg.Namespace != "" {
		store = NewNamespaced(store, cfg.Namespace)
	}

	if cfg.Key != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Key)
		if err != nil {
			_ = closer.Close()
			return nil, nil, errors.Join(ErrInvalidEncryptionKey, err)
		}
		enc, err := NewEncrypted(store, key)
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		store = enc
	}

	return store, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
