package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger. GO_ENV=production selects
// the JSON handler (one object per line, for log shipping); anything else
// gets the human-readable text handler. LOG_LEVEL sets the minimum level
// (debug, info, warn, error) and defaults to info.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
