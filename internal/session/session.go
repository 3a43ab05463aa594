// Package session implements the interactive variant of the harness: a
// socket.io client that joins a long-lived UI session, receives "invoke"
// events carrying an already-resolved data argument, runs the orchestrator
// once per event, and emits the result or failure back. "bookmark" events
// are persisted under the artifacts directory.
//
// The orchestrator holds no cross-invocation state, so repeated invocations
// over one session are independent. A null-input halt ends the session
// gracefully; other failures are reported and the session continues.
package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/harness"
	"github.com/vk/stagehand/internal/notify"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names exchanged with the session server.
const (
	eventInvoke   = "invoke"
	eventBookmark = "bookmark"
	eventResult   = "result"
	eventFailure  = "failure"
	eventHalted   = "halted"
)

// Options configure the session connection.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ArtifactsDir       string
	ConnectTimeout     time.Duration
}

// Session is one live connection to a session server.
type Session struct {
	io       *socket.Socket
	harness  *harness.Harness
	inv      harness.Invocation
	notifier *notify.Client
	opts     Options

	done     chan struct{}
	stopOnce sync.Once
}

// Connect dials the session server and waits for the connection to be
// established, adapted to the harness from the standard socket.io client
// bring-up: websocket transport only, explicit connect/connect_error
// signalling, and a hard timeout.
func Connect(ctx context.Context, opts Options, h *harness.Harness, inv harness.Invocation, notifier *notify.Client) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Connecting to session server %s.", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session URL: %w", err)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification for session connection.")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Session connected with sid %v.", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("session connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for session connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for session connection", timeout)
	}

	return &Session{
		io:       io,
		harness:  h,
		inv:      inv,
		notifier: notifier,
		opts:     opts,
		done:     make(chan struct{}),
	}, nil
}

// Run subscribes to session events and blocks until the session ends, either
// by a halt outcome, a server disconnect, or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	s.io.On(types.EventName(eventInvoke), func(datas ...any) {
		var payload any
		if len(datas) > 0 {
			payload = datas[0]
		}
		s.handleInvoke(ctx, payload)
	})
	s.io.On(types.EventName(eventBookmark), func(datas ...any) {
		var payload any
		if len(datas) > 0 {
			payload = datas[0]
		}
		s.handleBookmark(ctx, payload)
	})
	s.io.On(types.EventName("disconnect"), func(...any) {
		logger.Info("Session server disconnected.")
		s.stop()
	})

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the session server.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Closing session.")
	s.stop()
	s.io.Disconnect()
	return nil
}

func (s *Session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// handleInvoke runs one orchestrator invocation with the event payload as
// the data argument and emits the outcome back to the server.
func (s *Session) handleInvoke(ctx context.Context, payload any) {
	logger := ctxlog.FromContext(ctx)

	event, body := s.invokeOnce(ctx, payload)
	if err := s.io.Emit(event, body); err != nil {
		logger.Warn("Could not emit %q event: %s", event, err)
	}
	if event == eventHalted {
		logger.Info("Null input received, stopping session gracefully.")
		s.stop()
	}
}

// invokeOnce maps one invocation outcome onto the event to emit and its
// payload. Split out from handleInvoke so the mapping is testable without a
// live socket.
func (s *Session) invokeOnce(ctx context.Context, payload any) (string, any) {
	data, err := payloadToValue(payload)
	if err != nil {
		return eventFailure, fmt.Sprintf("invalid invoke payload: %v", err)
	}

	inv := s.inv
	inv.Data = data
	outcome := s.harness.RunOnce(ctx, inv)

	switch {
	case !outcome.Failed():
		return eventResult, renderResult(outcome.Result)
	case outcome.Mode == harness.Halt:
		return eventHalted, outcome.HaltCode
	default:
		return eventFailure, outcome.Err.Error()
	}
}
