package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	expectedTimeoutSecondsConstant   = 30
	expectedRegistryFileNameConstant = "sessions.json"
	registrySizeMetricNameConstant   = "sessions_json_kb"
	cronSessionsMetricNameConstant   = "cron_sessions"
	expectedRegistryCriticalConstant = int64(1000)
	expectedCronWarnConstant         = int64(30)
)

type readmeApplicationConfiguration struct {
	Common readmeCommonConfiguration `yaml:"common"`
	Tools  readmeToolsConfiguration  `yaml:"tools"`
}

type readmeCommonConfiguration struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type readmeToolsConfiguration struct {
	Cleanup readmeCleanupConfiguration `yaml:"cleanup"`
	Iterate readmeIterateConfiguration `yaml:"iterate"`
}

type readmeCleanupConfiguration struct {
	SessionDirectory string                               `yaml:"session_dir"`
	ArchiveDirectory string                               `yaml:"archive_dir"`
	MemoryDirectory  string                               `yaml:"memory_dir"`
	WorkspaceRoot    string                               `yaml:"workspace_root"`
	RegistryFileName string                               `yaml:"registry_file"`
	Thresholds       map[string]readmeThresholdBoundaries `yaml:"thresholds"`
}

type readmeThresholdBoundaries struct {
	Warn     int64 `yaml:"warn"`
	Critical int64 `yaml:"critical"`
}

type readmeIterateConfiguration struct {
	LabDirectory       string `yaml:"lab_dir"`
	MemoryFile         string `yaml:"memory_file"`
	CredentialsFile    string `yaml:"credentials_file"`
	GitHubUser         string `yaml:"github_user"`
	TestTimeoutSeconds int    `yaml:"test_timeout_seconds"`
	DryRun             bool   `yaml:"dry_run"`
}

func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var applicationConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration))

	require.Equal(testInstance, "info", applicationConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", applicationConfiguration.Common.LogFormat)

	cleanupConfiguration := applicationConfiguration.Tools.Cleanup
	require.Equal(testInstance, expectedRegistryFileNameConstant, cleanupConfiguration.RegistryFileName)
	require.NotEmpty(testInstance, cleanupConfiguration.SessionDirectory)
	require.NotEmpty(testInstance, cleanupConfiguration.ArchiveDirectory)
	require.NotEmpty(testInstance, cleanupConfiguration.MemoryDirectory)
	require.NotEmpty(testInstance, cleanupConfiguration.WorkspaceRoot)
	require.Equal(testInstance, expectedRegistryCriticalConstant, cleanupConfiguration.Thresholds[registrySizeMetricNameConstant].Critical)
	require.Equal(testInstance, expectedCronWarnConstant, cleanupConfiguration.Thresholds[cronSessionsMetricNameConstant].Warn)

	iterateConfiguration := applicationConfiguration.Tools.Iterate
	require.NotEmpty(testInstance, iterateConfiguration.LabDirectory)
	require.NotEmpty(testInstance, iterateConfiguration.MemoryFile)
	require.NotEmpty(testInstance, iterateConfiguration.CredentialsFile)
	require.Equal(testInstance, expectedTimeoutSecondsConstant, iterateConfiguration.TestTimeoutSeconds)
	require.False(testInstance, iterateConfiguration.DryRun)
}
