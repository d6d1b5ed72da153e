// Package config loads the authenticator's settings from the environment.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - LoadEnv reads one or more `.env` files into the process environment.
//     Later files win over earlier ones and real environment variables win
//     over every file.
//   - Load parses the environment into any struct annotated with `env` tags
//     and caches the result per type, so each configuration is parsed once
//     per process.
//   - MustLoadEnv and MustLoad panic instead of returning an error.
//   - ResetCache and ForceReload drop cached values after the environment
//     changes, mostly in tests.
//
// Config is the typed configuration of the authenticator itself. It embeds
// kvstore.Config for the storage backend and exposes LoggerOptions and
// ClientOptions so callers do not map fields by hand.
//
// # Variables
//
//	AUTH_ENV                development | staging | production (default development)
//	AUTH_LOG_LEVEL          debug | info | warn | error (default from AUTH_ENV)
//	AUTH_LOG_FORMAT         json | text (default from AUTH_ENV)
//	AUTH_STORE              memory | file | redis (default file)
//	AUTH_STORE_PATH         file backend location
//	AUTH_STORE_KEY          base64 32-byte key; enables encryption at rest
//	AUTH_STORE_NAMESPACE    key prefix
//	REDIS_URL, REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL, REDIS_CONNECT_TIMEOUT
//	AUTH_HTTP_TIMEOUT       per-call verification timeout (default 10s)
//	AUTH_SIGNATURE_SCHEME   legacy | hmac (default legacy)
//
// # Usage
//
//	if err := config.LoadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
//	    log.Fatal(err)
//	}
//	var cfg config.Config
//	config.MustLoad(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	log := logger.New(cfg.LoggerOptions("authenticator")...)
//
// # Error Handling
//
// Sentinels compare with errors.Is: ErrParsingConfig, ErrConfigNotLoaded,
// ErrNilPointer, ErrLoadingEnvFile and ErrInvalidConfig.
package config
