package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearHarnessEnv blanks every harness variable so ambient environment does
// not leak into a test.
func clearHarnessEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvApp, EnvModulesPath, EnvLogLevel, EnvConfig, EnvInputPath,
		EnvOutputPath, EnvErrorPath, EnvPrintConfig, EnvMaskedSettings,
		EnvClearOutput, EnvArtifactsDir, EnvNotifyURL, EnvSessionURL,
	} {
		t.Setenv(key, "")
	}
}

func TestParse_PositionalApp(t *testing.T) {
	clearHarnessEnv(t)
	var out bytes.Buffer

	cfg, shouldExit, err := Parse([]string{"echo"}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "echo", cfg.App)
	assert.Equal(t, "modules", cfg.ModulesPath, "modules path defaults")
}

func TestParse_FlagsOverrideEnvironment(t *testing.T) {
	clearHarnessEnv(t)
	t.Setenv(EnvApp, "from-env")
	t.Setenv(EnvModulesPath, "/env/modules")
	t.Setenv(EnvSessionURL, "http://env-session")
	var out bytes.Buffer

	cfg, shouldExit, err := Parse([]string{
		"-app", "from-flag",
		"-modules-path", "/flag/modules",
		"-session-url", "http://flag-session",
		"-log-level", "trace",
	}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "from-flag", cfg.App)
	assert.Equal(t, "/flag/modules", cfg.ModulesPath)
	assert.Equal(t, "http://flag-session", cfg.SessionURL)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestParse_ShorthandAppFlag(t *testing.T) {
	clearHarnessEnv(t)
	var out bytes.Buffer

	cfg, _, err := Parse([]string{"-a", "echo"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "echo", cfg.App)
}

func TestParse_EnvironmentFillsConfig(t *testing.T) {
	clearHarnessEnv(t)
	t.Setenv(EnvApp, "wordcount")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvConfig, `{"text":"hi"}`)
	t.Setenv(EnvInputPath, "/in/input.json")
	t.Setenv(EnvOutputPath, "/out/output.json")
	t.Setenv(EnvErrorPath, "/out/error.txt")
	t.Setenv(EnvPrintConfig, "true")
	t.Setenv(EnvMaskedSettings, "secret, token")
	t.Setenv(EnvClearOutput, "1")
	t.Setenv(EnvArtifactsDir, "/artifacts")
	t.Setenv(EnvNotifyURL, "http://notify")
	var out bytes.Buffer

	cfg, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "wordcount", cfg.App)
	assert.Equal(t, "warn", cfg.EnvLogLevel)
	assert.Equal(t, `{"text":"hi"}`, cfg.ConfigSource)
	assert.Equal(t, "/in/input.json", cfg.SourcePath)
	assert.Equal(t, "/out/output.json", cfg.OutputPath)
	assert.Equal(t, "/out/error.txt", cfg.ErrorPath)
	assert.True(t, cfg.PrintConfig)
	assert.Equal(t, []string{"secret", "token"}, cfg.MaskIDs)
	assert.True(t, cfg.ClearOutput)
	assert.Equal(t, "/artifacts", cfg.ArtifactsDir)
	assert.Equal(t, "http://notify", cfg.NotifyURL)
}

func TestParse_NoAppShowsUsage(t *testing.T) {
	clearHarnessEnv(t)
	var out bytes.Buffer

	cfg, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_HelpFlag(t *testing.T) {
	clearHarnessEnv(t)
	var out bytes.Buffer

	cfg, shouldExit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
}

func TestParse_UnknownFlag(t *testing.T) {
	clearHarnessEnv(t)
	var out bytes.Buffer

	_, _, err := Parse([]string{"-definitely-not-a-flag"}, &out)
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on", " On "} {
		assert.True(t, truthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "off", "2", "anything"} {
		assert.False(t, truthy(v), v)
	}
}
