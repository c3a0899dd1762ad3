package health

import (
	"strings"

	pathutils "github.com/miloslab/labops/internal/utils/path"
)

const (
	defaultSessionDirectoryConstant = "~/.openclaw/agents/main/sessions"
	defaultArchiveDirectoryConstant = "~/.openclaw/archive"
	defaultMemoryDirectoryConstant  = "~/.openclaw/workspace/memory"
	defaultWorkspaceRootConstant    = "~/.openclaw"
	defaultRegistryFileNameConstant = "sessions.json"
)

// Configuration key suffixes used when registering defaults with the loader.
const (
	sessionDirectoryConfigKeySuffixConstant = ".session_dir"
	archiveDirectoryConfigKeySuffixConstant = ".archive_dir"
	memoryDirectoryConfigKeySuffixConstant  = ".memory_dir"
	workspaceRootConfigKeySuffixConstant    = ".workspace_root"
	registryFileConfigKeySuffixConstant     = ".registry_file"
)

// DefaultConfigurationValues exposes loader defaults under the provided
// configuration key prefix.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + sessionDirectoryConfigKeySuffixConstant: defaults.SessionDirectory,
		configurationKey + archiveDirectoryConfigKeySuffixConstant: defaults.ArchiveDirectory,
		configurationKey + memoryDirectoryConfigKeySuffixConstant:  defaults.MemoryDirectory,
		configurationKey + workspaceRootConfigKeySuffixConstant:    defaults.WorkspaceRoot,
		configurationKey + registryFileConfigKeySuffixConstant:     defaults.RegistryFileName,
	}
}

// ThresholdConfiguration carries the warn and critical overrides for one metric.
type ThresholdConfiguration struct {
	Warn     int64 `mapstructure:"warn"`
	Critical int64 `mapstructure:"critical"`
}

// CommandConfiguration captures persistent settings for the cleanup command.
type CommandConfiguration struct {
	SessionDirectory string                            `mapstructure:"session_dir"`
	ArchiveDirectory string                            `mapstructure:"archive_dir"`
	MemoryDirectory  string                            `mapstructure:"memory_dir"`
	WorkspaceRoot    string                            `mapstructure:"workspace_root"`
	RegistryFileName string                            `mapstructure:"registry_file"`
	Thresholds       map[string]ThresholdConfiguration `mapstructure:"thresholds"`
}

// DefaultCommandConfiguration returns baseline configuration values for the cleanup command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SessionDirectory: defaultSessionDirectoryConstant,
		ArchiveDirectory: defaultArchiveDirectoryConstant,
		MemoryDirectory:  defaultMemoryDirectoryConstant,
		WorkspaceRoot:    defaultWorkspaceRootConstant,
		RegistryFileName: defaultRegistryFileNameConstant,
	}
}

// sanitize trims whitespace, expands home shortcuts, and applies defaults to
// unset configuration values.
func (configuration CommandConfiguration) sanitize(homeExpander *pathutils.HomeExpander) CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.SessionDirectory = sanitizePath(configuration.SessionDirectory, defaults.SessionDirectory, homeExpander)
	sanitized.ArchiveDirectory = sanitizePath(configuration.ArchiveDirectory, defaults.ArchiveDirectory, homeExpander)
	sanitized.MemoryDirectory = sanitizePath(configuration.MemoryDirectory, defaults.MemoryDirectory, homeExpander)
	sanitized.WorkspaceRoot = sanitizePath(configuration.WorkspaceRoot, defaults.WorkspaceRoot, homeExpander)

	sanitized.RegistryFileName = strings.TrimSpace(configuration.RegistryFileName)
	if len(sanitized.RegistryFileName) == 0 {
		sanitized.RegistryFileName = defaults.RegistryFileName
	}

	return sanitized
}

// BuildThresholdTable merges configured overrides over the default table.
// Overrides apply per metric and only when both boundaries are positive.
func (configuration CommandConfiguration) BuildThresholdTable() ThresholdTable {
	table := DefaultThresholdTable()
	for metricName, override := range configuration.Thresholds {
		if override.Warn <= 0 || override.Critical <= 0 {
			continue
		}
		table[metricName] = ThresholdPair{Warn: override.Warn, Critical: override.Critical}
	}
	return table
}

func sanitizePath(raw string, fallback string, homeExpander *pathutils.HomeExpander) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = fallback
	}
	return homeExpander.Expand(trimmed)
}
