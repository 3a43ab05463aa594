// Package hcladapter implements the config.Loader interface for HCL app
// manifests. A manifest declares an app function's entrypoint and its input
// settings (type, optionality, default, sensitivity); the harness validates
// the declarations against the registered Go handlers at startup.
package hcladapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all top-level app blocks from a manifest file.
type fileRoot struct {
	Apps   []*appBlock `hcl:"app,block"`
	Remain hcl.Body    `hcl:",remain"`
}

type appBlock struct {
	Name        string          `hcl:"name,label"`
	Description *string         `hcl:"description,optional"`
	Lifecycle   *lifecycleBlock `hcl:"lifecycle,block"`
	Inputs      []*inputBlock   `hcl:"input,block"`
}

type lifecycleBlock struct {
	OnRun string `hcl:"on_run"`
}

type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Description *string        `hcl:"description,optional"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Optional    *bool          `hcl:"optional,optional"`
	Sensitive   *bool          `hcl:"sensitive,optional"`
}

// Load parses every .hcl manifest found under the given paths into the
// format-agnostic model. Paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started with %d path(s).", len(paths))

	model := &config.Model{Apps: make(map[string]*config.AppDefinition)}

	files, err := findManifestFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered %d manifest file(s).", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		for _, app := range root.Apps {
			def, err := l.translateApp(ctx, app)
			if err != nil {
				return nil, fmt.Errorf("in manifest %s: %w", file, err)
			}
			if _, exists := model.Apps[def.Name]; exists {
				return nil, fmt.Errorf("in manifest %s: duplicate app definition %q", file, def.Name)
			}
			model.Apps[def.Name] = def
		}
	}

	logger.Debug("Manifest loading complete, %d app(s) defined.", len(model.Apps))
	return model, nil
}

// translateApp converts a decoded app block into its model form.
func (l *Loader) translateApp(ctx context.Context, block *appBlock) (*config.AppDefinition, error) {
	if block.Lifecycle == nil || block.Lifecycle.OnRun == "" {
		return nil, fmt.Errorf("app %q declares no lifecycle on_run handler", block.Name)
	}

	def := &config.AppDefinition{
		Name:      block.Name,
		Lifecycle: &config.Lifecycle{OnRun: block.Lifecycle.OnRun},
		Inputs:    make(map[string]*config.InputDefinition),
	}
	if block.Description != nil {
		def.Description = *block.Description
	}

	for _, in := range block.Inputs {
		inputDef, err := l.translateInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("in app %q: %w", block.Name, err)
		}
		def.Inputs[inputDef.Name] = inputDef
	}
	return def, nil
}

// translateInput converts an input block, resolving its type expression and
// evaluating its default against the declared type.
func (l *Loader) translateInput(ctx context.Context, block *inputBlock) (*config.InputDefinition, error) {
	def := &config.InputDefinition{Name: block.Name, Type: cty.DynamicPseudoType}
	if block.Description != nil {
		def.Description = *block.Description
	}
	if block.Optional != nil {
		def.Optional = *block.Optional
	}
	if block.Sensitive != nil {
		def.Sensitive = *block.Sensitive
	}

	ty, err := typeExprToCtyType(ctx, block.Type)
	if err != nil {
		return nil, fmt.Errorf("in input %q: %w", block.Name, err)
	}
	def.Type = ty

	if block.Default != nil {
		val, diags := block.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("in input %q: evaluating default: %w", block.Name, diags)
		}
		if !val.IsNull() {
			if !ty.Equals(cty.DynamicPseudoType) {
				if val, err = convert.Convert(val, ty); err != nil {
					return nil, fmt.Errorf("in input %q: default does not match type %s: %w", block.Name, ty.FriendlyName(), err)
				}
			}
			def.Default = &val
		}
	}

	return def, nil
}

// findManifestFiles walks the given paths and returns every .hcl file found.
func findManifestFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // A configured path that does not exist is not an error.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if _, dup := seen[path]; !dup && filepath.Ext(path) == ".hcl" {
				files = append(files, path)
				seen[path] = struct{}{}
			}
			continue
		}

		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				if _, dup := seen[p]; !dup {
					files = append(files, p)
					seen[p] = struct{}{}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
