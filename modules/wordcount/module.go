// Package wordcount is a built-in app function that computes word and
// character counts for its input text.
package wordcount

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the settings for the wordcount app. Text may come from the
// configured setting or from the data argument; the data argument wins.
type Input struct {
	Text string    `stage:"text"`
	Data cty.Value `stage:"data"`
}

// Output is the structured result of a count.
type Output struct {
	Words int `cty:"words"`
	Chars int `cty:"chars"`
}

// RunWordCount is the handler for the 'wordcount' app.
func RunWordCount(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx)

	text := input.Text
	if input.Data != cty.NilVal && !input.Data.IsNull() {
		if input.Data.Type() != cty.String {
			return nil, fmt.Errorf("wordcount data argument must be a string, got %s", input.Data.Type().FriendlyName())
		}
		text = input.Data.AsString()
	}

	out := &Output{
		Words: len(strings.Fields(text)),
		Chars: len([]rune(text)),
	}
	logger.Debug("Counted %d word(s) and %d character(s).", out.Words, out.Chars)
	return out, nil
}

// Register registers the handler with the harness.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterApp("RunWordCount", &registry.RegisteredApp{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        RunWordCount,
	})
}
