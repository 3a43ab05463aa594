package integrationtests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/stagehand/internal/app"
	"github.com/vk/stagehand/internal/hcladapter"
	"github.com/vk/stagehand/internal/registry"
	"github.com/vk/stagehand/internal/testutil"
)

// harnessResult holds the outcomes of an end-to-end invocation test.
type harnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Dir       string
}

// runInvocationTest writes the given manifest files into a temp directory,
// builds an App over the provided modules, runs it once, and captures the
// log output and error. Relative artifact paths in cfg are joined onto the
// temp directory.
func runInvocationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *harnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	modulesDir := filepath.Join(tmpDir, "modules")
	require.NoError(t, os.MkdirAll(modulesDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(modulesDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.ModulesPath = modulesDir
	cfg.SourcePath = joinIfRelative(tmpDir, cfg.SourcePath)
	cfg.OutputPath = joinIfRelative(tmpDir, cfg.OutputPath)
	cfg.ErrorPath = joinIfRelative(tmpDir, cfg.ErrorPath)
	cfg.ArtifactsDir = joinIfRelative(tmpDir, cfg.ArtifactsDir)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "trace"
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	var testApp *app.App
	var panicErr any
	func() {
		defer func() { panicErr = recover() }()
		testApp = app.NewApp(logBuffer, appConfig, hcladapter.NewLoader(), modules...)
	}()
	if panicErr != nil {
		return &harnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			Dir:       tmpDir,
		}
	}

	runErr := testApp.Run(context.Background())
	return &harnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Dir:       tmpDir,
	}
}

// simpleModule registers a single handler under a fixed name.
type simpleModule struct {
	Name    string
	Handler *registry.RegisteredApp
}

// Register implements registry.Module.
func (m *simpleModule) Register(r *registry.Registry) {
	r.RegisterApp(m.Name, m.Handler)
}

// newSimpleModule builds a module whose handler takes a typed input struct.
func newSimpleModule(name string, newInput func() any, fn any) *simpleModule {
	var inputType reflect.Type
	if in := newInput(); in != nil {
		inputType = reflect.TypeOf(in).Elem()
	}
	return &simpleModule{
		Name: name,
		Handler: &registry.RegisteredApp{
			NewInput:  newInput,
			InputType: inputType,
			Fn:        fn,
		},
	}
}

func joinIfRelative(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
