// Package testutil provides shared helpers for tests: a thread-safe log
// buffer and context/logger wiring.
package testutil

import (
	"bytes"
	"context"
	"sync"

	"github.com/vk/stagehand/internal/applog"
	"github.com/vk/stagehand/internal/ctxlog"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a background context carrying a TRACE-level logger that
// writes into the returned buffer.
func Context() (context.Context, *SafeBuffer) {
	buf := &SafeBuffer{}
	logger := applog.New(buf, applog.LevelTrace)
	return ctxlog.WithLogger(context.Background(), logger), buf
}
