// Package logger configures structured JSON logging and carries loggers
// through contexts.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init initializes the global logger with JSON output on stderr, at the level
// named by LOG_LEVEL or fallback when it is unset. Call it early in main
// before any logging occurs.
func Init(fallback string) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = fallback
	}
	defaultLogger = New(os.Stderr, level)
	slog.SetDefault(defaultLogger)
}

// New returns a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	lvl := ParseLevel(level)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}))
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Default returns the configured default logger.
func Default() *slog.Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}
