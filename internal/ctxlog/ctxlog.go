// Package ctxlog provides a context key for safely passing an applog.Logger
// instance through context.Context.
package ctxlog

import (
	"context"

	"github.com/vk/stagehand/internal/applog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the applog.Logger in a context.Context.
var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *applog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the applog.Logger from a context. Components receive
// their logger exclusively through this mechanism; a missing logger is a
// wiring error.
func FromContext(ctx context.Context) *applog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*applog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}
