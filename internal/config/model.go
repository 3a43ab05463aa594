package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of all loaded app manifests.
type Model struct {
	Apps map[string]*AppDefinition
}

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads manifests from the given paths and translates them into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// AppDefinition is the format-agnostic representation of an app manifest.
type AppDefinition struct {
	Name        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
}

// Lifecycle maps an app's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// InputDefinition defines a single input setting for an app function.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
	// Sensitive inputs never appear unredacted in printed configuration.
	Sensitive bool
}

// SensitiveInputs returns the names of all inputs marked sensitive, for
// merging into the mask set used when printing configuration.
func (d *AppDefinition) SensitiveInputs() []string {
	var names []string
	for name, in := range d.Inputs {
		if in.Sensitive {
			names = append(names, name)
		}
	}
	return names
}
