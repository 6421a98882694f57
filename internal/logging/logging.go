// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/vietddude/stylelog"
)

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger writing to w. Format "json" selects the JSON
// handler, anything else the tint console handler.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}

// Setup installs the default logger. debug forces the debug level.
func Setup(format, level string, debug bool) slog.Level {
	lvl, err := ParseLevel(level)
	if debug {
		lvl = slog.LevelDebug
	}

	if format == "json" {
		slog.SetDefault(New(os.Stderr, format, lvl))
	} else {
		stylelog.InitDefault(&tint.Options{
			Level:      lvl,
			TimeFormat: time.RFC3339,
		})
	}

	if err != nil {
		slog.Warn("invalid log level, using info", "level", level)
	}
	return lvl
}
