package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// App is the name of the app function to invoke.
	App string
	// ModulesPath is where app manifests are discovered.
	ModulesPath string

	// LogLevel is the explicit threshold override; EnvLogLevel is the
	// environment-provided threshold name. Resolution order is environment,
	// then explicit, then the default.
	LogLevel    string
	EnvLogLevel string

	// ConfigSource is the settings document: inline JSON or a file path.
	ConfigSource string

	// Artifact paths; an empty path disables that artifact.
	SourcePath string
	OutputPath string
	ErrorPath  string

	PrintConfig bool
	MaskIDs     []string

	ClearOutput  bool
	ArtifactsDir string

	NotifyURL  string
	SessionURL string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.App == "" {
		return nil, errors.New("App is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
