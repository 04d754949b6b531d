// Package logger builds the structured logger shared by the CLI and server.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New returns a text logger writing to w (stderr when nil).
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

// WithComponent tags every record from l with a component name.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	return l.With("component", component)
}
