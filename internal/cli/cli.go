package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/stagehand/internal/app"
	"github.com/vk/stagehand/internal/config"
)

// Environment variables consumed by the harness. The orchestration around a
// batch invocation distributes its inputs this way; flags exist for the
// operator-facing knobs and override the environment.
const (
	EnvApp            = "STAGEHAND_APP"
	EnvModulesPath    = "STAGEHAND_MODULES_PATH"
	EnvLogLevel       = "STAGEHAND_LOG_LEVEL"
	EnvConfig         = "STAGEHAND_CONFIG"
	EnvInputPath      = "STAGEHAND_INPUT_PATH"
	EnvOutputPath     = "STAGEHAND_OUTPUT_PATH"
	EnvErrorPath      = "STAGEHAND_ERROR_PATH"
	EnvPrintConfig    = "STAGEHAND_PRINT_CONFIG"
	EnvMaskedSettings = "STAGEHAND_MASKED_SETTINGS"
	EnvClearOutput    = "STAGEHAND_CLEAR_OUTPUT"
	EnvArtifactsDir   = "STAGEHAND_ARTIFACTS_DIR"
	EnvNotifyURL      = "STAGEHAND_NOTIFY_URL"
	EnvSessionURL     = "STAGEHAND_SESSION_URL"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments and the harness environment. It
// returns a populated app.Config, a boolean indicating if the program should
// exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("stagehand", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Stagehand - a thin execution harness for app functions.

Usage:
  stagehand [options] [APP]

Arguments:
  APP
    Name of the app function to invoke, as declared in its manifest.

Options:
`)
		flagSet.PrintDefaults()
	}

	appFlag := flagSet.String("app", "", "Name of the app function to invoke.")
	aFlag := flagSet.String("a", "", "Name of the app function to invoke (shorthand).")
	modulesPathFlag := flagSet.String("modules-path", "", "Path to the directory containing app modules and manifests.")
	logLevelFlag := flagSet.String("log-level", "", "Logging threshold: fatal, error, warn, info, debug or trace.")
	sessionURLFlag := flagSet.String("session-url", "", "socket.io endpoint of an interactive session server.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	appName := firstNonEmpty(*appFlag, *aFlag, flagSet.Arg(0), os.Getenv(EnvApp))
	if appName == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	modulesPath := firstNonEmpty(*modulesPathFlag, os.Getenv(EnvModulesPath), "modules")

	cfg, err := app.NewConfig(app.Config{
		App:          appName,
		ModulesPath:  modulesPath,
		LogLevel:     *logLevelFlag,
		EnvLogLevel:  os.Getenv(EnvLogLevel),
		ConfigSource: os.Getenv(EnvConfig),
		SourcePath:   os.Getenv(EnvInputPath),
		OutputPath:   os.Getenv(EnvOutputPath),
		ErrorPath:    os.Getenv(EnvErrorPath),
		PrintConfig:  truthy(os.Getenv(EnvPrintConfig)),
		MaskIDs:      config.SplitMaskIDs(os.Getenv(EnvMaskedSettings)),
		ClearOutput:  truthy(os.Getenv(EnvClearOutput)),
		ArtifactsDir: os.Getenv(EnvArtifactsDir),
		NotifyURL:    os.Getenv(EnvNotifyURL),
		SessionURL:   firstNonEmpty(*sessionURLFlag, os.Getenv(EnvSessionURL)),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return cfg, false, nil
}

// truthy interprets the boolean-style environment flags.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
