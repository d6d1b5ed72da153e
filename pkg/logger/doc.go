// Package logger builds the *slog.Logger shared by the authenticator
// components and keeps attribute names consistent across them.
//
// New takes functional options (format, level, output, static attributes,
// context extractors) and returns a logger whose handler pulls request-scoped
// values such as the approval flow id out of the context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "authenticator"),
//	    logger.WithLevel(level),
//	)
//
//	ctx = logger.WithFlowID(ctx, flowID)
//	log.InfoContext(ctx, "login approved",
//	    logger.AccountID(acc.ID),
//	    logger.Method(string(method)),
//	    logger.Email(req.Email),
//	)
//
// Components that accept a logger default to Discard, so libraries stay quiet
// unless the caller wires one in.
//
// # Attributes
//
// Helpers in attr.go return an empty slog.Attr for empty input, which slog
// drops, so call sites need no nil checks:
//
//	log.Warn("push registration failed", logger.Error(err))
//
// Email masks the local part; secrets, PINs and signatures have no helper on
// purpose and must never be logged.
package logger
