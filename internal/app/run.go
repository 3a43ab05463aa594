package app

import (
	"context"
	"fmt"

	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/fsutil"
	"github.com/vk/stagehand/internal/harness"
	"github.com/vk/stagehand/internal/session"
)

// Run executes one batch invocation, or joins an interactive session when a
// session URL is configured. It is safe to call repeatedly; the harness
// keeps no state between invocations.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started for app %q.", a.config.App)

	if a.config.ClearOutput {
		if err := fsutil.ResetArtifacts(ctx, a.config.ArtifactsDir, a.config.OutputPath); err != nil {
			return fmt.Errorf("resetting artifacts: %w", err)
		}
	}
	if a.config.ArtifactsDir != "" {
		uploads, err := fsutil.FindFilesByExtension(a.config.ArtifactsDir, ".json")
		if err != nil {
			a.logger.Warn("Could not scan artifacts directory: %s", err)
		} else {
			a.logger.Debug("Found %d auxiliary file(s) in artifacts directory.", len(uploads))
		}
	}

	inv := harness.Invocation{
		App:          a.config.App,
		ConfigSource: a.config.ConfigSource,
		SourcePath:   a.config.SourcePath,
		OutputPath:   a.config.OutputPath,
		ErrorPath:    a.config.ErrorPath,
		PrintConfig:  a.config.PrintConfig,
		MaskIDs:      a.config.MaskIDs,
	}

	if a.config.SessionURL != "" {
		return a.runSession(ctx, inv)
	}

	outcome := a.harness.RunOnce(ctx, inv)
	a.logger.Debug("App.Run finished.")
	return outcome.AsError()
}

// runSession joins the interactive session server and serves invocations
// until the session ends.
func (a *App) runSession(ctx context.Context, inv harness.Invocation) error {
	sess, err := session.Connect(ctx, session.Options{
		URL:          a.config.SessionURL,
		ArtifactsDir: a.config.ArtifactsDir,
	}, a.harness, inv, a.notifier)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	return sess.Run(ctx)
}
