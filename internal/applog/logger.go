// Package applog provides the harness logger: a fixed set of ordered levels,
// a single threshold resolved once at construction, and a plain line format
// written to one output stream. It rides on log/slog with a custom handler;
// instances are explicit and are passed around via ctxlog, never installed
// as a process-wide default.
package applog

import (
	"context"
	"io"
	"log/slog"
)

// Logger emits thresholded, template-formatted log lines.
type Logger struct {
	sl        *slog.Logger
	threshold Level
}

// New creates a Logger writing to out with the given threshold.
func New(out io.Writer, threshold Level) *Logger {
	return &Logger{
		sl:        slog.New(newLineHandler(out, threshold.slogLevel())),
		threshold: threshold,
	}
}

// NewResolved creates a Logger whose threshold is resolved from the
// environment-provided level name, then an explicit override, then the
// default. Resolution warnings are emitted through the new logger itself.
func NewResolved(out io.Writer, envValue, explicit string) *Logger {
	threshold, warnings := ResolveThreshold(envValue, explicit)
	logger := New(out, threshold)
	for _, w := range warnings {
		logger.Warn("%s", w)
	}
	return logger
}

// Threshold returns the active threshold.
func (l *Logger) Threshold() Level { return l.threshold }

// Log formats template against args and emits the line iff level is within
// the threshold. It never panics; a nil receiver is a no-op.
func (l *Logger) Log(level Level, template string, args ...any) {
	if l == nil {
		return
	}
	sl := level.slogLevel()
	if !l.sl.Enabled(context.Background(), sl) {
		return
	}
	l.sl.Log(context.Background(), sl, formatMessage(template, args...))
}

// Trace logs at TRACE level.
func (l *Logger) Trace(template string, args ...any) { l.Log(LevelTrace, template, args...) }

// Debug logs at DEBUG level.
func (l *Logger) Debug(template string, args ...any) { l.Log(LevelDebug, template, args...) }

// Info logs at INFO level.
func (l *Logger) Info(template string, args ...any) { l.Log(LevelInfo, template, args...) }

// Warn logs at WARN level.
func (l *Logger) Warn(template string, args ...any) { l.Log(LevelWarn, template, args...) }

// Error logs at ERROR level.
func (l *Logger) Error(template string, args ...any) { l.Log(LevelError, template, args...) }

// Fatal logs at FATAL level. It only logs; process termination is owned by
// the caller.
func (l *Logger) Fatal(template string, args ...any) { l.Log(LevelFatal, template, args...) }
