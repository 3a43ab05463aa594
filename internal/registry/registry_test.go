package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

type echoInput struct {
	Message string    `stage:"message"`
	Data    cty.Value `stage:"data"`
}

func echoHandler(_ context.Context, in *echoInput) (any, error) {
	return in.Message, nil
}

func registeredEcho() *RegisteredApp {
	return &RegisteredApp{
		NewInput:  func() any { return new(echoInput) },
		InputType: reflect.TypeOf(echoInput{}),
		Fn:        echoHandler,
	}
}

func echoDefinition() *config.AppDefinition {
	return &config.AppDefinition{
		Name:      "echo",
		Lifecycle: &config.Lifecycle{OnRun: "RunEcho"},
		Inputs: map[string]*config.InputDefinition{
			"message": {Name: "message", Type: cty.String},
		},
	}
}

func TestRegisterApp_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterApp("RunEcho", registeredEcho())
	assert.PanicsWithValue(t, "app handler with name 'RunEcho' already registered", func() {
		r.RegisterApp("RunEcho", registeredEcho())
	})
}

func TestApp_ResolvesDefinitionAndHandler(t *testing.T) {
	r := New()
	r.RegisterApp("RunEcho", registeredEcho())
	r.PopulateDefinitionsFromModel(&config.Model{Apps: map[string]*config.AppDefinition{
		"echo": echoDefinition(),
	}})

	def, handler, err := r.App("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", def.Name)
	assert.NotNil(t, handler.NewInput)
}

func TestApp_UnknownName(t *testing.T) {
	r := New()
	_, _, err := r.App("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown app "missing"`)
}

func TestApp_UnregisteredHandler(t *testing.T) {
	r := New()
	r.PopulateDefinitionsFromModel(&config.Model{Apps: map[string]*config.AppDefinition{
		"echo": echoDefinition(),
	}})

	_, _, err := r.App("echo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `handler "RunEcho" for app "echo" is not registered`)
}

func TestMaskedInputs(t *testing.T) {
	r := New()
	r.PopulateDefinitionsFromModel(&config.Model{Apps: map[string]*config.AppDefinition{
		"fetch": {
			Name:      "fetch",
			Lifecycle: &config.Lifecycle{OnRun: "RunFetch"},
			Inputs: map[string]*config.InputDefinition{
				"url":        {Name: "url", Type: cty.String},
				"auth_token": {Name: "auth_token", Type: cty.String, Sensitive: true},
			},
		},
	}})

	assert.Equal(t, []string{"auth_token"}, r.MaskedInputs())
}

func TestValidateRegistry(t *testing.T) {
	ctx, _ := testutil.Context()

	newRegistry := func(inputType reflect.Type, def *config.AppDefinition) *Registry {
		r := New()
		r.RegisterApp(def.Lifecycle.OnRun, &RegisteredApp{InputType: inputType, Fn: echoHandler})
		r.PopulateDefinitionsFromModel(&config.Model{Apps: map[string]*config.AppDefinition{def.Name: def}})
		return r
	}

	t.Run("matching manifest and struct", func(t *testing.T) {
		// echoInput also carries a data field, which needs no manifest input.
		r := newRegistry(reflect.TypeOf(echoInput{}), echoDefinition())
		assert.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("manifest input missing from struct", func(t *testing.T) {
		def := echoDefinition()
		def.Inputs["timeout"] = &config.InputDefinition{Name: "timeout", Type: cty.Number}
		r := newRegistry(reflect.TypeOf(echoInput{}), def)

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input 'timeout' which is not found in Go struct")
	})

	t.Run("struct field missing from manifest", func(t *testing.T) {
		type widerInput struct {
			Message string `stage:"message"`
			Extra   string `stage:"extra"`
		}
		r := newRegistry(reflect.TypeOf(widerInput{}), echoDefinition())

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input 'extra' which is not declared in manifest")
	})

	t.Run("type mismatch", func(t *testing.T) {
		type numericInput struct {
			Message int `stage:"message"`
		}
		r := newRegistry(reflect.TypeOf(numericInput{}), echoDefinition())

		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type mismatch")
	})

	t.Run("dynamic struct field accepts any declared type", func(t *testing.T) {
		type dynamicInput struct {
			Message cty.Value `stage:"message"`
		}
		r := newRegistry(reflect.TypeOf(dynamicInput{}), echoDefinition())
		assert.NoError(t, r.ValidateRegistry(ctx))
	})

	t.Run("inputs declared but handler has no struct", func(t *testing.T) {
		r := newRegistry(nil, echoDefinition())
		err := r.ValidateRegistry(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Go handler has no input struct")
	})
}
