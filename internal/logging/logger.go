// Package logging defines a minimal structured-logging interface used across
// the project, with adapters for log/slog and zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "collection refreshed", "collection", name, "records", n)
type Logger interface {
	// Debug logs verbose diagnostics (refresh timings, dropped events).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New builds a Logger writing to w. format is one of "json", "text" or "zap";
// level is one of "debug", "info", "warn", "error".
func New(format, level string, w io.Writer) (Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	switch strings.ToLower(format) {
	case "", "json":
		return NewSlogLogger(slog.New(newSlogHandler(w, lvl, false))), nil
	case "text":
		return NewSlogLogger(slog.New(newSlogHandler(w, lvl, true))), nil
	case "zap":
		return NewZapLogger(newZapCore(w, lvl)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
