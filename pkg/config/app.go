package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/kvstore"
	"github.com/dmitrymomot/mfakit/pkg/logger"
	"github.com/dmitrymomot/mfakit/pkg/signature"
	"github.com/dmitrymomot/mfakit/pkg/verifyclient"
)

// Config is the authenticator's process configuration.
type Config struct {
	Env       string `env:"AUTH_ENV" envDefault:"development"`
	LogLevel  string `env:"AUTH_LOG_LEVEL"`  // overrides the environment default when set
	LogFormat string `env:"AUTH_LOG_FORMAT"` // json or text; overrides the environment default when set

	Store kvstore.Config

	HTTPTimeout     time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"10s"`
	SignatureScheme string        `env:"AUTH_SIGNATURE_SCHEME" envDefault:"legacy"`
}

// Validate checks the enumerated settings. Failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if c.LogFormat != "" {
		if _, err := logger.ParseFormat(c.LogFormat); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := signature.ParseScheme(c.SignatureScheme); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case "", kvstore.BackendMemory, kvstore.BackendFile, kvstore.BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("negative http timeout %s", c.HTTPTimeout))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// LoggerOptions turns the logging settings into logger options. Explicit
// level and format win over the environment defaults; invalid values are
// ignored here and reported by Validate.
func (c Config) LoggerOptions(service string) []logger.Option {
	opts := []logger.Option{logger.WithEnvironment(c.Env, service)}
	if l, err := logger.ParseLevel(c.LogLevel); c.LogLevel != "" && err == nil {
		opts = append(opts, logger.WithLevel(l))
	}
	if f, err := logger.ParseFormat(c.LogFormat); c.LogFormat != "" && err == nil {
		opts = append(opts, logger.WithFormat(f))
	}
	return opts
}

// ClientOptions returns the verification client options the settings imply.
func (c Config) ClientOptions() []verifyclient.Option {
	scheme, err := signature.ParseScheme(c.SignatureScheme)
	if err != nil {
		scheme = signature.SchemeLegacy
	}
	return []verifyclient.Option{
		verifyclient.WithTimeout(c.HTTPTimeout),
		verifyclient.WithSignatureScheme(scheme),
	}
}
