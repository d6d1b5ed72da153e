package verifyclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/kvstore"
)

// ConfigStorageKey is where SaveConfig persists the client configuration.
const ConfigStorageKey = "@api_client_config"

// Config binds a client to one centralized application.
type Config struct {
	APIURL   string `json:"apiUrl"`
	AppID    string `json:"appId"`
	Secret   string `json:"secret"`
	DeviceID string `json:"deviceId"`
}

// Validate checks that every field is present and APIURL is an http(s) URL.
func (c Config) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, "apiUrl")
	}
	if c.AppID == "" {
		missing = append(missing, "appId")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if c.DeviceID == "" {
		missing = append(missing, "deviceId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig persists cfg so a later session can rebuild the client.
// The record holds the shared secret; back kv with kvstore.Encrypted.
func SaveConfig(ctx context.Context, kv kvstore.Store, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return kvstore.SetJSON(ctx, kv, ConfigStorageKey, cfg)
}

// LoadConfig reads the persisted configuration. A missing record is
// reported as kvstore.ErrNotFound.
func LoadConfig(ctx context.Context, kv kvstore.Store) (Config, error) {
	var cfg Config
	if err := kvstore.GetJSON(ctx, kv, ConfigStorageKey, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Join(kvstore.ErrStorage, err)
	}
	return cfg, nil
}

// ClearConfig removes the persisted configuration.
func ClearConfig(ctx context.Context, kv kvstore.Store) error {
	return kv.Delete(ctx, ConfigStorageKey)
}
