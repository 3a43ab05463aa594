// Package echo is the simplest built-in app function: it returns the data
// argument when one is provided, or its configured message otherwise. It
// doubles as the reference for wiring a new app into the registry.
package echo

import (
	"context"
	"reflect"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the settings for the echo app.
type Input struct {
	Message string    `stage:"message"`
	Data    cty.Value `stage:"data"`
}

// RunEcho is the handler for the 'echo' app.
func RunEcho(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx)

	if input.Data != cty.NilVal && !input.Data.IsNull() {
		logger.Debug("Echoing data argument.")
		return input.Data, nil
	}
	if input.Message == "" {
		logger.Debug("Nothing to echo, producing no result.")
		return nil, nil
	}
	return input.Message, nil
}

// Register registers the handler with the harness.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterApp("RunEcho", &registry.RegisteredApp{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        RunEcho,
	})
}
