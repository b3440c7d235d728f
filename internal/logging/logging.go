// Package logging configures the process-wide leveled logger.
//
// User-facing status lines go through fatih/color in the app package; this
// logger carries the diagnostics that are deliberately not shown as alerts
// (catalog load failures, persistence failures, HTTP access lines).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

func init() {
	level.Set(slog.LevelWarn)
	slog.SetDefault(New(os.Stderr))
}

// New returns a text logger writing to w that follows the shared level.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the shared level from a name: debug, info, warn, error or
// none. Unknown names fall back to warn.
func SetLevel(name string) {
	level.Set(ParseLevel(name))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning", "":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "off":
		return slog.LevelError + 100
	default:
		return slog.LevelWarn
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
