package config

import (
	"context"
	"strings"

	"github.com/vk/stagehand/internal/ctxlog"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// maskedText replaces the value of every masked setting in printed output.
const maskedText = "***masked***"

// SplitMaskIDs splits a comma-separated list of setting ids. An empty value
// splits to zero ids, and blank entries are dropped.
func SplitMaskIDs(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Render produces a single-line JSON-style rendering of settings with every
// id in maskIDs replaced by the mask literal. The settings themselves are
// never mutated; masking only affects this view.
func Render(settings *Settings, maskIDs []string) string {
	masked := make(map[string]struct{}, len(maskIDs))
	for _, id := range maskIDs {
		masked[id] = struct{}{}
	}

	var b strings.Builder
	b.WriteString("{")
	for i, name := range settings.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("\"" + name + "\": ")
		if _, hide := masked[name]; hide {
			b.WriteString("\"" + maskedText + "\"")
			continue
		}
		val, _ := settings.Get(name)
		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			b.WriteString("\"<unprintable>\"")
			continue
		}
		b.Write(raw)
	}
	b.WriteString("}")
	return b.String()
}

// PrintSettings logs the masked rendering of settings at INFO level. It is a
// diagnostic aid only and is called when the print-configuration flag is set.
func PrintSettings(ctx context.Context, settings *Settings, maskIDs []string) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Resolved configuration: %s", Render(settings, maskIDs))
}
