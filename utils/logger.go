package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog with printf-style level methods
type Logger struct {
	sl *slog.Logger
}

// NewLogger creates a text logger on stdout at info level
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, slog.LevelInfo)
}

// NewLoggerTo creates a logger writing to w at the given level
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{sl: slog.New(h)}
}

// NopLogger discards everything; handy in tests
func NopLogger() *Logger {
	return NewLoggerTo(io.Discard, slog.LevelError+1)
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info
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

// With returns a logger that tags every record with the given key/value pairs
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

func (l *Logger) log(level slog.Level, msg string, args ...interface{}) {
	if !l.sl.Enabled(context.Background(), level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.sl.Log(context.Background(), level, msg)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}
