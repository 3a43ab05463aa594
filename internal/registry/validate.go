package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code: every manifest input must have a tagged Go field of a compatible
// type, and vice versa. The distinguished data input is exempt from the
// manifest side because it is populated from the input artifact.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for appName, def := range r.DefinitionRegistry {
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
		if !ok {
			continue
		}

		if handler.InputType == nil {
			if len(def.Inputs) > 0 {
				errs = append(errs, fmt.Sprintf("app '%s': manifest declares inputs, but Go handler has no input struct", appName))
			}
			continue
		}

		manifestInputs := make(map[string]struct{})
		for name := range def.Inputs {
			manifestInputs[name] = struct{}{}
		}

		goInputs := make(map[string]reflect.StructField)
		inputType := handler.InputType
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tagName := strings.Split(field.Tag.Get(config.TagName), ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		for name := range goInputs {
			if name == config.DataInputName {
				continue
			}
			if _, ok := manifestInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("app '%s': Go struct has field for input '%s' which is not declared in manifest", appName, name))
			}
		}
		for name := range manifestInputs {
			if name == config.DataInputName {
				continue
			}
			if _, ok := goInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("app '%s': manifest declares input '%s' which is not found in Go struct", appName, name))
			}
		}

		for name, inputDef := range def.Inputs {
			goField, ok := goInputs[name]
			if !ok || name == config.DataInputName {
				continue
			}

			if inputDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest input '%s' of app '%s' has 'type = any', which disables static type checking.", name, appName)
				continue
			}
			if goField.Type == reflect.TypeOf(cty.Value{}) {
				continue // Dynamic fields accept any declared type.
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("app '%s', input '%s': could not imply cty type from Go field type %s: %v", appName, name, goField.Type, err))
				continue
			}
			if !inputDef.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("app '%s', input '%s': type mismatch. Manifest requires '%s' but Go struct field '%s' provides '%s'",
					appName, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
