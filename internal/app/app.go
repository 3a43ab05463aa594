package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/stagehand/internal/applog"
	"github.com/vk/stagehand/internal/config"
	"github.com/vk/stagehand/internal/ctxlog"
	"github.com/vk/stagehand/internal/harness"
	"github.com/vk/stagehand/internal/notify"
	"github.com/vk/stagehand/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *applog.Logger
	registry *registry.Registry
	harness  *harness.Harness
	notifier *notify.Client
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry.
// Manifest and registration problems are deploy-time errors and panic; the
// caller recovers them into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := applog.NewResolved(outW, cfg.EnvLogLevel, cfg.LogLevel)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured with threshold %s.", logger.Threshold())

	model, err := loader.Load(ctx, cfg.ModulesPath)
	if err != nil {
		panic(fmt.Errorf("failed to load app manifests: %w", err))
	}
	logger.Debug("Manifests loaded: %d app(s) defined.", len(model.Apps))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All app modules registered (%d).", len(modules))

	reg.PopulateDefinitionsFromModel(model)
	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between manifests and Go code is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	notifier := notify.New(cfg.NotifyURL)

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		harness:  harness.New(reg, notifier),
		notifier: notifier,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *applog.Logger {
	return a.logger
}
