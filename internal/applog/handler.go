package applog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// lineHandler is a slog.Handler that writes plain single-line records of the
// shape:
//
//	YYYY-MM-DD HH:MM:SS [LEVEL] message
//
// The level column is padded or truncated to exactly 5 characters and
// timestamps are rendered in UTC.
type lineHandler struct {
	mu  *sync.Mutex
	out io.Writer
	min slog.Level
}

func newLineHandler(out io.Writer, min slog.Level) *lineHandler {
	return &lineHandler{
		mu:  &sync.Mutex{},
		out: out,
		min: min,
	}
}

// Enabled implements slog.Handler. The threshold is fixed at construction;
// log calls never mutate it.
func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

// Handle implements slog.Handler.
func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s [%-5.5s] %s\n",
		r.Time.UTC().Format("2006-01-02 15:04:05"),
		levelName(r.Level),
		r.Message,
	)
	return err
}

// WithAttrs implements slog.Handler. Attributes are not part of the line
// format, so the handler is returned unchanged.
func (h *lineHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *lineHandler) WithGroup(_ string) slog.Handler { return h }
