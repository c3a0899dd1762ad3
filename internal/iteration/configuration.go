package iteration

import (
	"strings"

	pathutils "github.com/miloslab/labops/internal/utils/path"
)

const (
	defaultLabDirectoryConstant       = "~/.openclaw/workspace/milos-lab"
	defaultMemoryFileConstant         = "~/.openclaw/memory/weekly-iteration.md"
	defaultCredentialsFileConstant    = "~/.openclaw/config/github-credentials.json"
	defaultTestTimeoutSecondsConstant = 30
)

// Configuration key suffixes used when registering defaults with the loader.
const (
	labDirectoryConfigKeySuffixConstant    = ".lab_dir"
	memoryFileConfigKeySuffixConstant      = ".memory_file"
	credentialsFileConfigKeySuffixConstant = ".credentials_file"
	testTimeoutConfigKeySuffixConstant     = ".test_timeout_seconds"
)

// DefaultConfigurationValues exposes loader defaults under the provided
// configuration key prefix.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + labDirectoryConfigKeySuffixConstant:    defaults.LabDirectory,
		configurationKey + memoryFileConfigKeySuffixConstant:      defaults.MemoryFile,
		configurationKey + credentialsFileConfigKeySuffixConstant: defaults.CredentialsFile,
		configurationKey + testTimeoutConfigKeySuffixConstant:     defaults.TestTimeoutSeconds,
	}
}

// CommandConfiguration captures persistent settings for the iterate command.
type CommandConfiguration struct {
	LabDirectory       string `mapstructure:"lab_dir"`
	MemoryFile         string `mapstructure:"memory_file"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	GitHubUser         string `mapstructure:"github_user"`
	EntrypointsFile    string `mapstructure:"entrypoints_file"`
	TestTimeoutSeconds int    `mapstructure:"test_timeout_seconds"`
	DryRun             bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns baseline configuration values for the iterate command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		LabDirectory:       defaultLabDirectoryConstant,
		MemoryFile:         defaultMemoryFileConstant,
		CredentialsFile:    defaultCredentialsFileConstant,
		TestTimeoutSeconds: defaultTestTimeoutSecondsConstant,
	}
}

// sanitize trims whitespace, expands home shortcuts, and applies defaults to
// unset configuration values.
func (configuration CommandConfiguration) sanitize(homeExpander *pathutils.HomeExpander) CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.LabDirectory = sanitizePath(configuration.LabDirectory, defaults.LabDirectory, homeExpander)
	sanitized.MemoryFile = sanitizePath(configuration.MemoryFile, defaults.MemoryFile, homeExpander)
	sanitized.CredentialsFile = sanitizePath(configuration.CredentialsFile, defaults.CredentialsFile, homeExpander)
	sanitized.GitHubUser = strings.TrimSpace(configuration.GitHubUser)

	sanitized.EntrypointsFile = strings.TrimSpace(configuration.EntrypointsFile)
	if len(sanitized.EntrypointsFile) > 0 {
		sanitized.EntrypointsFile = homeExpander.Expand(sanitized.EntrypointsFile)
	}

	if sanitized.TestTimeoutSeconds <= 0 {
		sanitized.TestTimeoutSeconds = defaults.TestTimeoutSeconds
	}

	return sanitized
}

func sanitizePath(raw string, fallback string, homeExpander *pathutils.HomeExpander) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = fallback
	}
	return homeExpander.Expand(trimmed)
}
