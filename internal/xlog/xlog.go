// Package xlog is a thin wrapper over log/slog giving every pipeline stage
// (parse, infer, sirbuild, backend, optimize) a consistent leveled,
// phase-tagged logger. A verbose flag gates detail via slog's level
// filtering rather than a hand-rolled bool check per call site.
package xlog

import (
	"log/slog"
	"os"
)

// Logger wraps a *slog.Logger pinned to one pipeline phase.
type Logger struct {
	slog *slog.Logger
}

// New returns a Logger writing text-formatted records to w at the given
// level (slog.LevelInfo by default at the CLI's normal verbosity,
// slog.LevelDebug under -v).
func New(w *os.File, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(h)}
}

// Default returns a Logger writing to stderr at LevelInfo, the logger a
// compilation uses when the CLI passes no explicit verbosity.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}

// Phase returns a child logger tagging every record with the given
// pipeline phase ("parse", "infer", "sirbuild", "backend", "optimize"),
// matching the phase vocabulary errors.Report already uses.
func (l *Logger) Phase(phase string) *Logger {
	return &Logger{slog: l.slog.With("phase", phase)}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Timing logs a stage's wall-clock duration in milliseconds at Debug level.
func (l *Logger) Timing(stage string, ms float64) {
	l.slog.Debug("stage timing", "stage", stage, "ms", ms)
}
