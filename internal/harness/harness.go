// Package harness is the execution orchestrator: it resolves configuration
// and input for one app-function invocation, invokes the function exactly
// once, and captures its result or failure into the correct artifact.
//
// The harness holds no cross-invocation mutable state, so the same instance
// is safely invoked repeatedly by an interactive session.
package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/vk/stagehand/internal/artifact"
	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/notify"
	"github.com/vk/stagehand/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Invocation carries everything one invocation needs. Empty artifact paths
// disable the corresponding feature.
type Invocation struct {
	App          string
	ConfigSource string
	SourcePath   string
	OutputPath   string
	ErrorPath    string
	PrintConfig  bool
	MaskIDs      []string

	// Data is an already-resolved data argument supplied by an interactive
	// session. When set it takes the place of reading SourcePath.
	Data cty.Value
}

// Harness runs app functions.
type Harness struct {
	registry *registry.Registry
	notifier *notify.Client
}

// New creates a Harness over the given registry. The notifier may be nil.
func New(reg *registry.Registry, notifier *notify.Client) *Harness {
	return &Harness{registry: reg, notifier: notifier}
}

// RunOnce performs a single invocation and returns its terminal outcome.
//
// On success the result is written to the output artifact and a completion
// notification is fired. On failure the error is logged, written as text to
// the error artifact, and classified: the null-input class halts with code
// 10 so session callers can stop gracefully; everything else propagates.
func (h *Harness) RunOnce(ctx context.Context, inv Invocation) *Outcome {
	logger := ctxlog.FromContext(ctx)
	// All invocation timestamps are in the canonical zone.
	started := time.Now().UTC()
	logger.Info("Invoking app %q.", inv.App)

	result, err := h.execute(ctx, inv)
	if err != nil {
		logger.Error("Invocation of app %q failed: %s", inv.App, err)
		if werr := artifact.WriteText(ctx, err.Error(), inv.ErrorPath); werr != nil {
			logger.Error("Could not write error artifact: %s", werr)
		}
		if errors.Is(err, artifact.ErrNullInput) {
			return &Outcome{Err: err, Mode: Halt, HaltCode: NullInputHaltCode}
		}
		return &Outcome{Err: err, Mode: Propagate}
	}

	if werr := artifact.Write(ctx, result, inv.OutputPath); werr != nil {
		logger.Error("Invocation of app %q failed: %s", inv.App, werr)
		if terr := artifact.WriteText(ctx, werr.Error(), inv.ErrorPath); terr != nil {
			logger.Error("Could not write error artifact: %s", terr)
		}
		return &Outcome{Err: werr, Mode: Propagate}
	}

	logger.Info("App %q completed in %s.", inv.App, time.Since(started).Round(time.Millisecond))
	h.notifier.Fire(ctx, notify.EventCompleted, inv.App, map[string]any{
		"started_at":  started.Format(time.RFC3339),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return &Outcome{Result: result}
}

// execute performs steps 2-4 of the lifecycle: resolve configuration, attach
// the data argument, and invoke the app function exactly once.
func (h *Harness) execute(ctx context.Context, inv Invocation) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	def, handler, err := h.registry.App(inv.App)
	if err != nil {
		return cty.NilVal, err
	}

	settings, err := config.LoadSettings(ctx, inv.ConfigSource)
	if err != nil {
		return cty.NilVal, err
	}
	if inv.PrintConfig {
		maskIDs := append(def.SensitiveInputs(), inv.MaskIDs...)
		config.PrintSettings(ctx, settings, maskIDs)
	}

	data := inv.Data
	if data == cty.NilVal {
		if data, err = artifact.Read(ctx, inv.SourcePath); err != nil {
			return cty.NilVal, err
		}
	}

	input := handler.NewInput()
	if input != nil {
		if err := config.DecodeInto(ctx, settings, def.Inputs, input); err != nil {
			return cty.NilVal, err
		}
		if data != cty.NilVal {
			if err := config.MergeData(input, data); err != nil {
				return cty.NilVal, err
			}
		}
	} else if data != cty.NilVal {
		return cty.NilVal, fmt.Errorf("app %q accepts no input but an input artifact was provided", inv.App)
	}

	logger.Debug("Calling app handler %q.", def.Lifecycle.OnRun)
	out, err := callHandler(handler.Fn, ctx, input)
	if err != nil {
		return cty.NilVal, fmt.Errorf("app %q: %w", inv.App, err)
	}

	return artifact.FromGo(out)
}

// callHandler invokes fn, which must have the shape
// func(context.Context, *Input) (any, error), exactly once.
func callHandler(fn any, ctx context.Context, input any) (any, error) {
	handlerFunc := reflect.ValueOf(fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}

	if input == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(input))
	}

	results := handlerFunc.Call(callArgs)
	out := results[0].Interface()
	if errResult := results[1].Interface(); errResult != nil {
		return nil, errResult.(error)
	}
	return out, nil
}
