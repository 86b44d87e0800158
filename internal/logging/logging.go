// Package logging configures the process-wide slog logger from the
// environment. Call Setup once at the top of main.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Setup installs the default logger. LOG_LEVEL selects debug, info, warn or
// error (default info). LOG_FORMAT selects json or text; when unset, a
// terminal gets text and anything else gets JSON.
func Setup() *slog.Logger {
	logger := New(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), isatty.IsTerminal(os.Stdout.Fd()))
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string, terminal bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	case "text":
		return slog.New(slog.NewTextHandler(w, opts))
	}
	if terminal {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
