// Package logger builds log/slog loggers and provides attribute helpers for
// session and storage events.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/couchsession/core/logger"
//
//	log := logger.New(logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug))
//	log.Info("session authenticated", logger.SessionID(id), logger.Principal("alice"))
//
// From environment configuration (LOG_LEVEL, LOG_FORMAT, APP_NAME):
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
//
// Presets:
//
//	logger.New(logger.WithDevelopment("sessionctl")) // text, debug
//	logger.New(logger.WithProduction("api"))         // JSON, info
//
// # Attributes
//
// Helpers return slog.Attr values with consistent keys. Helpers for optional
// values (SessionID, Principal, Key) return an empty attribute for empty input,
// which slog omits:
//
//	log.Warn("store unavailable",
//		logger.Backend("couchbase"),
//		logger.Action("save"),
//		logger.Error(err),
//		logger.Elapsed(start),
//	)
//
// Libraries in this module default to Discard so they stay silent unless a
// logger is passed in.
package logger
