package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/harness"
	"github.com/vk/stagehand/internal/registry"
	"github.com/vk/stagehand/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

type sessionInput struct {
	Data cty.Value `stage:"data"`
}

// newTestSession builds a session around a single-app harness without a live
// socket connection.
func newTestSession(t *testing.T, fn func(ctx context.Context, in *sessionInput) (any, error)) *Session {
	t.Helper()

	reg := registry.New()
	reg.RegisterApp("RunSession", &registry.RegisteredApp{
		NewInput:  func() any { return new(sessionInput) },
		InputType: reflect.TypeOf(sessionInput{}),
		Fn:        fn,
	})
	reg.PopulateDefinitionsFromModel(&config.Model{Apps: map[string]*config.AppDefinition{
		"session-app": {
			Name:      "session-app",
			Lifecycle: &config.Lifecycle{OnRun: "RunSession"},
			Inputs:    map[string]*config.InputDefinition{},
		},
	}})

	return &Session{
		harness: harness.New(reg, nil),
		inv:     harness.Invocation{App: "session-app"},
		opts:    Options{ArtifactsDir: t.TempDir()},
		done:    make(chan struct{}),
	}
}

func TestPayloadToValue(t *testing.T) {
	t.Run("nil payload means no data", func(t *testing.T) {
		val, err := payloadToValue(nil)
		require.NoError(t, err)
		assert.Equal(t, cty.NilVal, val)
	})

	t.Run("decoded map payload", func(t *testing.T) {
		val, err := payloadToValue(map[string]any{"count": float64(3)})
		require.NoError(t, err)
		assert.Equal(t, cty.NumberIntVal(3), val.GetAttr("count"))
	})

	t.Run("scalar payload", func(t *testing.T) {
		val, err := payloadToValue("ping")
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("ping"), val)
	})

	t.Run("unencodable payload", func(t *testing.T) {
		_, err := payloadToValue(func() {})
		assert.Error(t, err)
	})
}

func TestRenderResult(t *testing.T) {
	assert.Empty(t, renderResult(cty.NilVal))
	assert.Empty(t, renderResult(cty.NullVal(cty.String)))
	assert.JSONEq(t, `"done"`, renderResult(cty.StringVal("done")))
	assert.JSONEq(t, `{"n":1}`, renderResult(cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(1)})))
}

func TestInvokeOnce_SuccessEmitsResult(t *testing.T) {
	ctx, _ := testutil.Context()
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	event, body := s.invokeOnce(ctx, map[string]any{"k": "v"})
	assert.Equal(t, eventResult, event)
	assert.JSONEq(t, `{"k":"v"}`, body.(string))
}

func TestInvokeOnce_NilResultEmitsEmptyResult(t *testing.T) {
	ctx, _ := testutil.Context()
	s := newTestSession(t, func(_ context.Context, _ *sessionInput) (any, error) {
		return nil, nil
	})

	event, body := s.invokeOnce(ctx, map[string]any{"k": "v"})
	assert.Equal(t, eventResult, event)
	assert.Equal(t, "", body)
}

func TestInvokeOnce_FailureEmitsError(t *testing.T) {
	ctx, _ := testutil.Context()
	s := newTestSession(t, func(_ context.Context, _ *sessionInput) (any, error) {
		return nil, errors.New("backend exploded")
	})

	event, body := s.invokeOnce(ctx, nil)
	assert.Equal(t, eventFailure, event)
	assert.Contains(t, body.(string), "backend exploded")
}

func TestInvokeOnce_NullInputEmitsHalted(t *testing.T) {
	ctx, _ := testutil.Context()
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	// No payload and an empty input artifact is the null-input condition.
	inputPath := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(inputPath, nil, 0o644))
	s.inv.SourcePath = inputPath

	event, body := s.invokeOnce(ctx, nil)
	assert.Equal(t, eventHalted, event)
	assert.Equal(t, harness.NullInputHaltCode, body)
}

func TestInvokeOnce_InvalidPayloadEmitsFailure(t *testing.T) {
	ctx, _ := testutil.Context()
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	event, body := s.invokeOnce(ctx, func() {})
	assert.Equal(t, eventFailure, event)
	assert.Contains(t, body.(string), "invalid invoke payload")
}

func TestHandleBookmark_PersistsAndLogs(t *testing.T) {
	ctx, buf := testutil.Context()
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	s.handleBookmark(ctx, map[string]any{"position": 7})

	entries, err := os.ReadDir(s.opts.ArtifactsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "bookmark-")

	raw, err := os.ReadFile(filepath.Join(s.opts.ArtifactsDir, entries[0].Name()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":7}`, string(raw))
	assert.Contains(t, buf.String(), "Bookmark persisted")
}

func TestHandleBookmark_NoPayloadIsIgnored(t *testing.T) {
	ctx, buf := testutil.Context()
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	s.handleBookmark(ctx, nil)

	entries, err := os.ReadDir(s.opts.ArtifactsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, buf.String(), "Ignoring bookmark event")
}

func TestPersistBookmark_RequiresArtifactsDir(t *testing.T) {
	_, err := persistBookmark("", map[string]any{"position": 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifacts directory configured")
}

func TestStop_IsIdempotent(t *testing.T) {
	s := newTestSession(t, func(_ context.Context, in *sessionInput) (any, error) {
		return in.Data, nil
	})

	s.stop()
	s.stop()

	select {
	case <-s.done:
	default:
		t.Fatal("done channel should be closed")
	}
}
