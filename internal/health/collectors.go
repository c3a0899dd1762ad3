package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/miloslab/labops/internal/execshell"
)

const (
	transcriptGlobPatternConstant         = "*.jsonl"
	cronSessionKeySubstringConstant       = "cron"
	kilobyteConstant                int64 = 1024
	megabyteConstant                int64 = 1024 * 1024
	diskUsageHumanReadableFlagConstant    = "-h"
	diskUsageMinimumColumnsConstant       = 5
	registryParseErrorTemplateConstant    = "parsing session registry %s: %w"
	registryReadErrorTemplateConstant     = "reading session registry %s: %w"
	transcriptGlobErrorTemplateConstant   = "listing transcripts in %s: %w"
	fileSystemNotConfiguredMessage        = "metrics collector file system not configured"
)

// ErrFileSystemNotConfigured is reported when a collector is built without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessage)

// MetricsCollector gathers the raw measurements that feed a HealthReport.
type MetricsCollector struct {
	fileSystem        FileSystem
	diskUsageExecutor DiskUsageExecutor
}

// NewMetricsCollector constructs a MetricsCollector. The disk usage executor
// may be nil, in which case disk usage collection reports an empty summary.
func NewMetricsCollector(fileSystem FileSystem, diskUsageExecutor DiskUsageExecutor) (*MetricsCollector, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &MetricsCollector{fileSystem: fileSystem, diskUsageExecutor: diskUsageExecutor}, nil
}

// RegistrySizeKB reports the session registry size in whole kilobytes. An
// absent registry reports zero without error.
func (collector *MetricsCollector) RegistrySizeKB(registryPath string) (int64, error) {
	fileInformation, statError := collector.fileSystem.Stat(registryPath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, statError
	}
	return fileInformation.Size() / kilobyteConstant, nil
}

// CountSessions parses the session registry and counts total entries and
// entries whose key marks a cron-originated session. A missing or malformed
// registry propagates an error and aborts the audit.
func (collector *MetricsCollector) CountSessions(registryPath string) (SessionCounts, error) {
	registryContent, readError := collector.fileSystem.ReadFile(registryPath)
	if readError != nil {
		return SessionCounts{}, fmt.Errorf(registryReadErrorTemplateConstant, registryPath, readError)
	}

	var registryEntries map[string]json.RawMessage
	if unmarshalError := json.Unmarshal(registryContent, &registryEntries); unmarshalError != nil {
		return SessionCounts{}, fmt.Errorf(registryParseErrorTemplateConstant, registryPath, unmarshalError)
	}

	counts := SessionCounts{Total: int64(len(registryEntries))}
	for sessionKey := range registryEntries {
		if strings.Contains(sessionKey, cronSessionKeySubstringConstant) {
			counts.Cron++
		}
	}
	return counts, nil
}

// FindLargeTranscripts returns the transcript paths in the session directory
// whose size exceeds the warn threshold expressed in megabytes. Enumeration
// order follows the filesystem and is not specified.
func (collector *MetricsCollector) FindLargeTranscripts(sessionDirectory string, warnMegabytes int64) ([]string, error) {
	transcriptPaths, globError := collector.fileSystem.Glob(filepath.Join(sessionDirectory, transcriptGlobPatternConstant))
	if globError != nil {
		return nil, fmt.Errorf(transcriptGlobErrorTemplateConstant, sessionDirectory, globError)
	}

	sizeBoundaryBytes := warnMegabytes * megabyteConstant
	largeTranscripts := make([]string, 0)
	for _, transcriptPath := range transcriptPaths {
		fileInformation, statError := collector.fileSystem.Stat(transcriptPath)
		if statError != nil {
			continue
		}
		if fileInformation.Size() > sizeBoundaryBytes {
			largeTranscripts = append(largeTranscripts, transcriptPath)
		}
	}
	return largeTranscripts, nil
}

// CollectDiskUsage samples disk usage for the directory through df -h and
// parses the second output line. Command failures and short output degrade to
// an empty summary rather than an error.
func (collector *MetricsCollector) CollectDiskUsage(executionContext context.Context, directory string) DiskUsageSummary {
	if collector.diskUsageExecutor == nil {
		return DiskUsageSummary{}
	}

	commandDetails := execshell.CommandDetails{Arguments: []string{diskUsageHumanReadableFlagConstant, directory}}
	executionResult, executionError := collector.diskUsageExecutor.ExecuteDiskFree(executionContext, commandDetails)
	if executionError != nil {
		return DiskUsageSummary{}
	}

	outputLines := strings.Split(strings.TrimSpace(executionResult.StandardOutput), "\n")
	if len(outputLines) < 2 {
		return DiskUsageSummary{}
	}

	columns := strings.Fields(outputLines[1])
	if len(columns) < diskUsageMinimumColumnsConstant {
		return DiskUsageSummary{}
	}
	return DiskUsageSummary{
		Total:     columns[1],
		Used:      columns[2],
		Available: columns[3],
		Percent:   columns[4],
	}
}
