package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/stagehand/internal/ctxlog"
)

// SentinelName is the marker file left behind after a reset so the recreated
// artifacts directory survives tooling that prunes empty directories.
const SentinelName = ".stagehand"

// ResetArtifacts deletes and recreates the artifacts directory, leaving only
// the sentinel marker, and removes any stale output artifact. It runs before
// an invocation when the clear-output flag is set; the artifact write
// semantics do not depend on it having run.
func ResetArtifacts(ctx context.Context, dir, outputPath string) error {
	logger := ctxlog.FromContext(ctx)

	if dir != "" {
		logger.Debug("Resetting artifacts directory %s.", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clearing artifacts directory %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("recreating artifacts directory %s: %w", dir, err)
		}
		sentinel := filepath.Join(dir, SentinelName)
		if err := os.WriteFile(sentinel, nil, 0o644); err != nil {
			return fmt.Errorf("writing sentinel %s: %w", sentinel, err)
		}
	}

	if outputPath != "" {
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale output artifact %s: %w", outputPath, err)
		}
		logger.Debug("Removed stale output artifact %s if present.", outputPath)
	}

	return nil
}
