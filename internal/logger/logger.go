package logger

import (
	"io"
	"log/slog"
	"strings"
)

var Logger = slog.Default()

// Init installs the process-wide logger and makes it the slog default, so
// packages that fall back to slog.Default share its level and format.
func Init(w io.Writer, debug bool, format string) {
	Logger = New(w, debug, format)
	slog.SetDefault(Logger)
}

// New builds a logger writing to w. format "json" selects the JSON handler,
// anything else the text handler.
func New(w io.Writer, debug bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
