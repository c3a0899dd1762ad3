package health_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miloslab/labops/internal/health"
)

func newHealthService(testInstance *testing.T, clock health.Clock, outputBuffer *bytes.Buffer) *health.Service {
	fileSystem := health.OSFileSystem{}
	collector, collectorError := health.NewMetricsCollector(fileSystem, nil)
	require.NoError(testInstance, collectorError)
	archiver, archiverError := health.NewSessionArchiver(fileSystem, clock)
	require.NoError(testInstance, archiverError)
	service, serviceError := health.NewService(zap.NewNop(), collector, archiver, fileSystem, clock, outputBuffer)
	require.NoError(testInstance, serviceError)
	return service
}

func buildWorkspaceConfiguration(sessionDirectory string, archiveDirectory string, memoryDirectory string) health.CommandConfiguration {
	return health.CommandConfiguration{
		SessionDirectory: sessionDirectory,
		ArchiveDirectory: archiveDirectory,
		MemoryDirectory:  memoryDirectory,
		WorkspaceRoot:    sessionDirectory,
		RegistryFileName: registryFileNameConstant,
	}
}

func TestServiceRunReportsCriticalSessionCounts(testInstance *testing.T) {
	sessionDirectory := testInstance.TempDir()
	archiveDirectory := testInstance.TempDir()
	memoryDirectory := filepath.Join(testInstance.TempDir(), "memory")

	registryEntries := map[string]any{}
	for entryOrdinal := 0; entryOrdinal < 81; entryOrdinal++ {
		registryEntries[fmt.Sprintf("cron-session-%03d", entryOrdinal)] = map[string]any{}
	}
	for entryOrdinal := 0; entryOrdinal < 20; entryOrdinal++ {
		registryEntries[fmt.Sprintf("interactive-session-%03d", entryOrdinal)] = map[string]any{}
	}
	writeRegistry(testInstance, sessionDirectory, registryEntries)

	clock := fixedClock{instant: time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC)}
	outputBuffer := &bytes.Buffer{}
	service := newHealthService(testInstance, clock, outputBuffer)

	runError := service.Run(context.Background(), buildWorkspaceConfiguration(sessionDirectory, archiveDirectory, memoryDirectory))
	require.NoError(testInstance, runError)

	output := outputBuffer.String()
	require.Contains(testInstance, output, "Sessions: 101 total, 81 cron\n")
	require.Contains(testInstance, output, "ALERT: CRITICAL: 101 total sessions\n")
	require.Contains(testInstance, output, "ALERT: CRITICAL: 81 cron sessions\n")

	memoryContent, readError := os.ReadFile(filepath.Join(memoryDirectory, "2026-08-30.md"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(memoryContent), "## Auto-Cleaner - 14:07\n")
	require.Contains(testInstance, string(memoryContent), "- Sessions: 101 total, 81 cron\n")
	require.Contains(testInstance, string(memoryContent), "- Alerts: CRITICAL: 101 total sessions, CRITICAL: 81 cron sessions\n")
}

func TestServiceRunArchivesStaleSessionsAndAppendsDailyLog(testInstance *testing.T) {
	sessionDirectory := testInstance.TempDir()
	archiveDirectory := testInstance.TempDir()
	memoryDirectory := filepath.Join(testInstance.TempDir(), "memory")

	writeRegistry(testInstance, sessionDirectory, map[string]any{"interactive-alpha": map[string]any{}})
	staleSessionName := "session-alpha.reset.json"
	require.NoError(testInstance, os.WriteFile(filepath.Join(sessionDirectory, staleSessionName), []byte("{}"), 0o644))

	clock := fixedClock{instant: time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC)}
	outputBuffer := &bytes.Buffer{}
	service := newHealthService(testInstance, clock, outputBuffer)

	configuration := buildWorkspaceConfiguration(sessionDirectory, archiveDirectory, memoryDirectory)
	require.NoError(testInstance, service.Run(context.Background(), configuration))

	require.Contains(testInstance, outputBuffer.String(), "Archived 1 old session files\n")
	require.FileExists(testInstance, filepath.Join(archiveDirectory, archiveFixedDateDirectoryConstant, staleSessionName))

	firstEntry, firstReadError := os.ReadFile(filepath.Join(memoryDirectory, "2026-08-30.md"))
	require.NoError(testInstance, firstReadError)
	require.NotContains(testInstance, string(firstEntry), "- Alerts:")

	// A second run appends instead of truncating the daily log.
	require.NoError(testInstance, service.Run(context.Background(), configuration))
	secondEntry, secondReadError := os.ReadFile(filepath.Join(memoryDirectory, "2026-08-30.md"))
	require.NoError(testInstance, secondReadError)
	require.Equal(testInstance, 2, bytes.Count(secondEntry, []byte("## Auto-Cleaner - 14:07")))
}

func TestServiceRunPropagatesMissingRegistry(testInstance *testing.T) {
	sessionDirectory := testInstance.TempDir()
	outputBuffer := &bytes.Buffer{}
	clock := fixedClock{instant: time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC)}
	service := newHealthService(testInstance, clock, outputBuffer)

	configuration := buildWorkspaceConfiguration(sessionDirectory, testInstance.TempDir(), testInstance.TempDir())
	runError := service.Run(context.Background(), configuration)
	require.Error(testInstance, runError)
	require.Empty(testInstance, outputBuffer.String())
}

func TestNewServiceValidation(testInstance *testing.T) {
	fileSystem := health.OSFileSystem{}
	collector, collectorError := health.NewMetricsCollector(fileSystem, nil)
	require.NoError(testInstance, collectorError)
	archiver, archiverError := health.NewSessionArchiver(fileSystem, health.SystemClock{})
	require.NoError(testInstance, archiverError)

	testCases := []struct {
		name          string
		buildService  func() (*health.Service, error)
		expectedError error
	}{
		{
			name: "missing_collector",
			buildService: func() (*health.Service, error) {
				return health.NewService(zap.NewNop(), nil, archiver, fileSystem, health.SystemClock{}, &bytes.Buffer{})
			},
			expectedError: health.ErrCollectorNotConfigured,
		},
		{
			name: "missing_archiver",
			buildService: func() (*health.Service, error) {
				return health.NewService(zap.NewNop(), collector, nil, fileSystem, health.SystemClock{}, &bytes.Buffer{})
			},
			expectedError: health.ErrArchiverNotConfigured,
		},
		{
			name: "missing_output_writer",
			buildService: func() (*health.Service, error) {
				return health.NewService(zap.NewNop(), collector, archiver, fileSystem, health.SystemClock{}, nil)
			},
			expectedError: health.ErrOutputWriterNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			service, constructionError := testCase.buildService()
			require.ErrorIs(subtestInstance, constructionError, testCase.expectedError)
			require.Nil(subtestInstance, service)
		})
	}
}
