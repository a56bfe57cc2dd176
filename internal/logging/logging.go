// Package logging builds the process-wide structured logger. Output is one
// JSON object per line with the service name and environment on every record.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger parses level leniently; an unknown value falls back to info
// rather than failing startup.
func NewLogger(level, serviceName, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if env == "dev" {
		opts.AddSource = true
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
