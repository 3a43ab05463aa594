// Package registry provides the central "glue" between app manifests and
// compiled Go app functions.
//
// The Registry stores mappings between the handler names used in manifests
// (e.g. "RunEcho") and the actual Go functions and input types that
// implement them, alongside the parsed manifest definitions. During startup
// the registry is validated so that manifests and Go code are in sync,
// preventing a wide class of runtime errors.
package registry

import (
	"fmt"
	"reflect"

	"github.com/vk/stagehand/internal/config"
)

// RegisteredApp holds the compiled Go parts of an app function.
type RegisteredApp struct {
	NewInput func() any
	// InputType is the struct type NewInput allocates, used for manifest
	// parity validation.
	InputType reflect.Type
	// Fn has the shape func(ctx context.Context, input *Input) (any, error).
	Fn any
}

// Module is the interface all built-in app packages implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered handlers and manifest definitions for a
// single application instance.
type Registry struct {
	HandlerRegistry    map[string]*RegisteredApp
	DefinitionRegistry map[string]*config.AppDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:    make(map[string]*RegisteredApp),
		DefinitionRegistry: make(map[string]*config.AppDefinition),
	}
}

// RegisterApp registers the Go handler for an app function. Registering the
// same name twice is a programmer error.
func (r *Registry) RegisterApp(name string, handler *RegisteredApp) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("app handler with name '%s' already registered", name))
	}
	r.HandlerRegistry[name] = handler
}

// PopulateDefinitionsFromModel copies the loaded manifest definitions into
// the registry for access during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Apps {
		r.DefinitionRegistry[key] = val
	}
}

// App resolves an app name to its definition and handler.
func (r *Registry) App(name string) (*config.AppDefinition, *RegisteredApp, error) {
	def, ok := r.DefinitionRegistry[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown app %q", name)
	}
	handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
	if !ok {
		return nil, nil, fmt.Errorf("handler %q for app %q is not registered", def.Lifecycle.OnRun, name)
	}
	return def, handler, nil
}

// MaskedInputs returns the setting ids of every sensitive manifest input
// across all apps, for merging into the configuration mask set.
func (r *Registry) MaskedInputs() []string {
	var ids []string
	for _, def := range r.DefinitionRegistry {
		ids = append(ids, def.SensitiveInputs()...)
	}
	return ids
}
