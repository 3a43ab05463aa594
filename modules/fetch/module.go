// Package fetch is a built-in app function that performs a single HTTP GET
// and returns the response status and body. Its auth token input is marked
// sensitive in the manifest, so printed configuration always masks it.
package fetch

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the settings for the fetch app.
type Input struct {
	URL       string `stage:"url"`
	AuthToken string `stage:"auth_token"`
	Timeout   string `stage:"timeout"`
}

// RunFetch is the handler for the 'fetch' app.
func RunFetch(ctx context.Context, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Fetching %s.", input.URL)

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		logger.Warn("Could not parse timeout %q, using default 30s.", input.Timeout)
		timeout = 30 * time.Second
	}

	client := resty.New().SetTimeout(timeout)
	defer client.Close()

	req := client.R().SetContext(ctx)
	if input.AuthToken != "" {
		req.SetAuthToken(input.AuthToken)
	}

	res, err := req.Get(input.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", input.URL, err)
	}
	logger.Debug("Received status %d from %s.", res.StatusCode(), input.URL)

	return cty.ObjectVal(map[string]cty.Value{
		"status_code": cty.NumberIntVal(int64(res.StatusCode())),
		"body":        cty.StringVal(res.String()),
	}), nil
}

// Register registers the handler with the harness.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterApp("RunFetch", &registry.RegisteredApp{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        RunFetch,
	})
}
