// Package logger configures the application's structured logging. The
// server uses JSON output via log/slog; the CLI uses a colorized terminal
// handler.
package logger
