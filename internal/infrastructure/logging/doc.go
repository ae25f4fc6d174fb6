// Package logging provides structured logging for MeloHub Core.
//
// It is a thin wrapper over log/slog: JSON output for production, text
// for development, level filtering, and service/version fields stamped
// on every record. Configured through the logging section of
// config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//
// Never log secrets or tokens; truncate anything sensitive before it
// reaches a log field.
package logging
