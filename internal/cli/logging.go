package cli

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the CLI logger. The client only logs at debug level, so the
// default "warn" keeps request lines out of the way.
func newLogger(w io.Writer, s LogSettings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(s.Level)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(s.Format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", "cli")
}

// parseLogLevel accepts debug, info, warn, error (case-insensitive) and
// falls back to warn.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
