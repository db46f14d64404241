// Package logger provides structured logging functionality for the application.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mstolarz/vizquery/internal/config"
)

// Setup initializes the application's logging system based on the provided
// configuration. It creates a structured JSON logger with the configured
// level and sets it as the default logger.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	level := parseLevel(cfg.LogLevel)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log, nil
}

// SetupCLI initializes a colorized logger writing to stderr, suited for
// interactive terminal use. It is also set as the default logger.
func SetupCLI(logLevel string) *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      parseLevel(logLevel),
		TimeFormat: time.Kitchen,
	})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// parseLevel maps a configured level name to a slog.Level, defaulting to
// info when the name is unknown.
func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("invalid log level configured, using default level",
			"configured_level", logLevel,
			"default_level", "info")
		return slog.LevelInfo
	}
}
