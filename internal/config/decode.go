package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag binding an input struct field to a setting id.
const TagName = "stage"

// DataInputName is the distinguished input that carries the value of the
// input artifact. It is populated by MergeData, never from settings.
const DataInputName = "data"

// DecodeInto populates a pointer-to-struct from settings, guided by the
// manifest input definitions: declared defaults fill absent settings,
// optional inputs may stay zero, and missing required inputs are an error.
// Fields without a tag and the data field are left untouched.
func DecodeInto(ctx context.Context, settings *Settings, defs map[string]*InputDefinition, target any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding settings into input struct.")

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			continue
		}

		tagName := strings.Split(fieldDef.Tag.Get(TagName), ",")[0]
		if tagName == "" || tagName == "-" || tagName == DataInputName {
			continue
		}

		inputDef, ok := defs[tagName]
		if !ok {
			continue
		}

		var value cty.Value
		if set, provided := settings.Get(tagName); provided {
			value = set
		} else if inputDef.Default != nil {
			value = *inputDef.Default
		} else if inputDef.Optional {
			continue
		} else {
			return fmt.Errorf("missing required setting %q", tagName)
		}

		if err := decodeValue(value, inputDef.Type, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("decoding setting %q: %w", tagName, err)
		}
	}

	logger.Debug("Finished decoding settings.")
	return nil
}

// decodeValue converts a single value to the declared manifest type (when it
// is concrete) and stores it into the target pointer.
func decodeValue(value cty.Value, declared cty.Type, target any) error {
	if fieldPtr, ok := target.(*cty.Value); ok {
		*fieldPtr = value
		return nil
	}

	wantType, err := gocty.ImpliedType(reflect.ValueOf(target).Elem().Interface())
	if err != nil {
		return fmt.Errorf("unable to infer cty.Type for target: %w", err)
	}
	if !declared.Equals(cty.DynamicPseudoType) && !declared.Equals(wantType) {
		// Pass the value through the declared type first so manifest type
		// errors surface as such, not as Go binding errors.
		if value, err = convert.Convert(value, declared); err != nil {
			return err
		}
	}
	converted, err := convert.Convert(value, wantType)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, target)
}

// MergeData overlays a present input artifact value onto the field tagged
// with the data input name. Apps that accept no data reject a provided
// artifact so upstream wiring mistakes do not pass silently.
func MergeData(target any, data cty.Value) error {
	if data == cty.NilVal {
		return nil
	}

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("merge target must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		tagName := strings.Split(fieldDef.Tag.Get(TagName), ",")[0]
		if tagName != DataInputName {
			continue
		}
		fieldVal := structVal.Field(i)
		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			break
		}
		if err := decodeValue(data, cty.DynamicPseudoType, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("merging data input: %w", err)
		}
		return nil
	}

	return fmt.Errorf("app input struct declares no %q field but an input artifact was provided", DataInputName)
}
