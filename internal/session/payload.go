package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/notify"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// payloadToValue converts a decoded socket.io event payload (maps, slices
// and JSON scalars) into a cty value by way of its JSON form. A nil payload
// means the event carried no data argument.
func payloadToValue(payload any) (cty.Value, error) {
	if payload == nil {
		return cty.NilVal, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}

// renderResult serializes a result value for the result event. A null
// result renders as an empty string, mirroring the zero-byte output
// artifact of the batch path.
func renderResult(result cty.Value) string {
	if result == cty.NilVal || result.IsNull() {
		return ""
	}
	raw, err := ctyjson.Marshal(result, result.Type())
	if err != nil {
		return ""
	}
	return string(raw)
}

// handleBookmark persists a bookmark payload under the artifacts directory
// and fires the bookmark notification. Persistence failures are logged; they
// never end the session.
func (s *Session) handleBookmark(ctx context.Context, payload any) {
	logger := ctxlog.FromContext(ctx)

	if payload == nil {
		logger.Warn("Ignoring bookmark event with no payload.")
		return
	}

	path, err := persistBookmark(s.opts.ArtifactsDir, payload)
	if err != nil {
		logger.Error("Could not persist bookmark: %s", err)
		return
	}

	logger.Info("Bookmark persisted at %s.", path)
	s.notifier.Fire(ctx, notify.EventBookmark, s.inv.App, map[string]any{"path": path})
}

// persistBookmark writes the payload as a timestamped JSON file in dir.
func persistBookmark(dir string, payload any) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no artifacts directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifacts directory %s: %w", dir, err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding bookmark: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("bookmark-%d.json", time.Now().UTC().UnixNano()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing bookmark %s: %w", path, err)
	}
	return path, nil
}
