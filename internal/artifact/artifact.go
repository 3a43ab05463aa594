// Package artifact reads and writes the per-invocation filesystem artifacts
// the harness exchanges with its surrounding orchestration: one serialized
// input value, one serialized output value (or an empty sentinel for "no
// result"), and ad-hoc text artifacts such as error reports.
//
// All operations are single-shot and non-transactional; artifacts are
// ephemeral per-invocation state, not durable storage.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrNullInput reports an input artifact that is present but zero bytes: the
// upstream stage produced no usable output. This is distinct from "no input
// configured" (an empty path), which is a normal condition. Callers match it
// with errors.Is; it is non-retryable.
var ErrNullInput = errors.New("input artifact is present but empty")

// Read loads the serialized value at path. An empty path returns NilVal with
// no error. A zero-byte artifact fails with ErrNullInput. Anything else is
// decoded from JSON into a value.
func Read(ctx context.Context, path string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	if path == "" {
		logger.Debug("No input artifact configured.")
		return cty.NilVal, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading input artifact %s: %w", path, err)
	}
	if len(raw) == 0 {
		logger.Warn("Input artifact %s is empty: upstream produced no usable output.", path)
		return cty.NilVal, fmt.Errorf("input artifact %s: %w", path, ErrNullInput)
	}

	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("typing input artifact %s: %w", path, err)
	}
	val, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding input artifact %s: %w", path, err)
	}

	logger.Debug("Read input artifact %s (%d bytes).", path, len(raw))
	return val, nil
}

// Write serializes value into the artifact at path, overwriting any existing
// content. An empty path disables output entirely. A null value is written
// as a zero-byte artifact: the encoding of "the app produced no result."
func Write(ctx context.Context, value cty.Value, path string) error {
	logger := ctxlog.FromContext(ctx)

	if path == "" {
		logger.Debug("No output artifact configured, discarding result.")
		return nil
	}

	if value == cty.NilVal || value.IsNull() {
		logger.Debug("Writing empty output artifact %s.", path)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("writing output artifact %s: %w", path, err)
		}
		return nil
	}

	raw, err := ctyjson.Marshal(value, value.Type())
	if err != nil {
		return fmt.Errorf("encoding output artifact %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing output artifact %s: %w", path, err)
	}

	logger.Debug("Wrote output artifact %s (%d bytes).", path, len(raw))
	return nil
}

// WriteText writes a text artifact, overwriting any existing content. It is
// a no-op unless both path and text are non-empty.
func WriteText(ctx context.Context, text, path string) error {
	if path == "" || text == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing text artifact %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Wrote text artifact %s (%d bytes).", path, len(text))
	return nil
}

// FromGo converts a native Go value into its corresponding cty.Value. Values
// that already are cty.Value pass through unchanged.
func FromGo(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
