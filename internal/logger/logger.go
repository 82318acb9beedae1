// Package logger provides the process-wide slog logger and helpers to carry
// request-scoped loggers through a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey struct{}

// L is the global logger. Init replaces it.
var L = slog.Default()

// Init configures the global logger writing to stderr
func Init(level, format string) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter configures the global logger writing to w.
// format is "json" or anything else for text.
func InitWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// FromContext returns the logger stored in ctx or the global one
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithContext stores l in ctx
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
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

// Debug logs with the global logger
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs with the global logger
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs with the global logger
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs with the global logger
func Error(msg string, args ...any) { L.Error(msg, args...) }
