// Package logging builds the structured loggers used by the sclc tools.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger settings.
type Config struct {
	Service string // added as the "service" attribute when set
	Level   string // debug, info, warn, error
	Format  string // text or json (default: text)
	Output  io.Writer
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(service string) Config {
	return Config{
		Service: service,
		Level:   "info",
		Format:  "text",
	}
}

// New creates a logger from cfg. Output defaults to stderr so that
// logs never mix with command output on stdout.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// parseLevel converts a level name; unknown names select info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
