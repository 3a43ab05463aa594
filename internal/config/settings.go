package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Settings is an ordered mapping from setting id to value, parsed from a
// single JSON document. The zero value is an empty settings set.
type Settings struct {
	names  []string
	values map[string]cty.Value
}

// NewSettings returns an empty settings set.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]cty.Value)}
}

// Len returns the number of settings.
func (s *Settings) Len() int { return len(s.names) }

// Names returns the setting ids in document order.
func (s *Settings) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the value for a setting id and whether it is present.
func (s *Settings) Get(name string) (cty.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// set stores a value, keeping the first-seen document position on duplicates.
func (s *Settings) set(name string, v cty.Value) {
	if s.values == nil {
		s.values = make(map[string]cty.Value)
	}
	if _, seen := s.values[name]; !seen {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

// ParseSettings parses a JSON object document into Settings, preserving the
// order of its top-level keys. An empty or whitespace-only document yields
// an empty settings set; any other malformed input is an error.
func ParseSettings(raw []byte) (*Settings, error) {
	settings := NewSettings()
	if len(bytes.TrimSpace(raw)) == 0 {
		return settings, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing configuration document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("configuration document must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing configuration document: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("configuration document has a non-string key %v", keyTok)
		}

		var rawVal json.RawMessage
		if err := dec.Decode(&rawVal); err != nil {
			return nil, fmt.Errorf("parsing value of setting %q: %w", key, err)
		}
		ty, err := ctyjson.ImpliedType(rawVal)
		if err != nil {
			return nil, fmt.Errorf("typing value of setting %q: %w", key, err)
		}
		val, err := ctyjson.Unmarshal(rawVal, ty)
		if err != nil {
			return nil, fmt.Errorf("decoding value of setting %q: %w", key, err)
		}
		settings.set(key, val)
	}

	// Consume the closing brace and ensure nothing trails it.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing configuration document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected content after configuration document")
	}

	return settings, nil
}

// LoadSettings resolves the configuration source into Settings. The source
// is either inline JSON (when it starts with an object or array delimiter)
// or a file path. An absent source, a path to a missing file, and an empty
// document all yield an empty settings set; malformed JSON is surfaced as
// an error, never swallowed.
func LoadSettings(ctx context.Context, source string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)

	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		logger.Debug("No configuration source provided, using empty settings.")
		return NewSettings(), nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		logger.Debug("Parsing inline configuration document (%d bytes).", len(trimmed))
		return ParseSettings([]byte(trimmed))
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Configuration file %s does not exist, using empty settings.", trimmed)
			return NewSettings(), nil
		}
		return nil, fmt.Errorf("reading configuration file %s: %w", trimmed, err)
	}
	logger.Debug("Parsing configuration file %s (%d bytes).", trimmed, len(raw))
	return ParseSettings(raw)
}
