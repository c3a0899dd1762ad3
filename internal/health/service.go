package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	serviceCollectorNotConfiguredMessage = "health service metrics collector not configured"
	serviceArchiverNotConfiguredMessage  = "health service session archiver not configured"
	serviceWriterNotConfiguredMessage    = "health service output writer not configured"
	sessionSummaryOutputTemplate         = "Sessions: %d total, %d cron\n"
	registrySummaryOutputTemplate        = "sessions.json: %dKB\n"
	transcriptSummaryOutputTemplate      = "Large transcripts: %d\n"
	archivedSummaryOutputTemplate        = "Archived %d old session files\n"
	alertOutputTemplateConstant          = "ALERT: %s\n"
	memoryFileNameTemplateConstant       = "%s.md"
	memoryDateLayoutConstant             = "2006-01-02"
	memoryFilePermissionsConstant        = 0o644
	memoryWriteErrorTemplateConstant     = "appending daily log %s: %w"
	memoryMkdirErrorTemplateConstant     = "creating memory directory %s: %w"
	auditStartedLogMessageConstant       = "running session health audit"
	auditCompletedLogMessageConstant     = "session health audit complete"
	registrySizeLogFieldConstant         = "registry_size_kb"
	totalSessionsLogFieldConstant        = "total_sessions"
	cronSessionsLogFieldConstant         = "cron_sessions"
	alertCountLogFieldConstant           = "alert_count"
	archivedCountLogFieldConstant        = "archived_count"
)

// Sentinel errors reported during service construction.
var (
	ErrCollectorNotConfigured    = errors.New(serviceCollectorNotConfiguredMessage)
	ErrArchiverNotConfigured     = errors.New(serviceArchiverNotConfiguredMessage)
	ErrOutputWriterNotConfigured = errors.New(serviceWriterNotConfiguredMessage)
)

// Service performs the session health audit.
type Service struct {
	logger       *zap.Logger
	collector    *MetricsCollector
	archiver     *SessionArchiver
	fileSystem   FileSystem
	clock        Clock
	outputWriter io.Writer
}

// NewService constructs a health Service with the provided collaborators. A
// nil logger downgrades to a no-op logger and a nil clock to the system clock.
func NewService(logger *zap.Logger, collector *MetricsCollector, archiver *SessionArchiver, fileSystem FileSystem, clock Clock, outputWriter io.Writer) (*Service, error) {
	if collector == nil {
		return nil, ErrCollectorNotConfigured
	}
	if archiver == nil {
		return nil, ErrArchiverNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if outputWriter == nil {
		return nil, ErrOutputWriterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	service := &Service{
		logger:       logger,
		collector:    collector,
		archiver:     archiver,
		fileSystem:   fileSystem,
		clock:        clock,
		outputWriter: outputWriter,
	}
	return service, nil
}

// Run executes the audit: collectors in fixed order, alert evaluation, stale
// session archiving, the daily log append, and the stdout summary. Alerts are
// informational and never raise an error.
func (service *Service) Run(executionContext context.Context, configuration CommandConfiguration) error {
	service.logger.Debug(auditStartedLogMessageConstant)

	thresholds := configuration.BuildThresholdTable()
	registryPath := filepath.Join(configuration.SessionDirectory, configuration.RegistryFileName)

	registrySizeKB, sizeError := service.collector.RegistrySizeKB(registryPath)
	if sizeError != nil {
		return sizeError
	}

	sessionCounts, countError := service.collector.CountSessions(registryPath)
	if countError != nil {
		return countError
	}

	largeTranscripts, transcriptError := service.collector.FindLargeTranscripts(configuration.SessionDirectory, thresholds[MetricTranscriptSizeMB].Warn)
	if transcriptError != nil {
		return transcriptError
	}

	report := HealthReport{
		Timestamp:        service.clock.Now(),
		RegistrySizeKB:   registrySizeKB,
		TotalSessions:    sessionCounts.Total,
		CronSessions:     sessionCounts.Cron,
		LargeTranscripts: largeTranscripts,
		DiskUsage:        service.collector.CollectDiskUsage(executionContext, configuration.WorkspaceRoot),
	}
	report.Alerts = EvaluateAlerts(report, thresholds)

	fmt.Fprintf(service.outputWriter, sessionSummaryOutputTemplate, report.TotalSessions, report.CronSessions)
	fmt.Fprintf(service.outputWriter, registrySummaryOutputTemplate, report.RegistrySizeKB)
	fmt.Fprintf(service.outputWriter, transcriptSummaryOutputTemplate, len(report.LargeTranscripts))

	archivedPaths, archiveError := service.archiver.ArchiveStaleSessions(configuration.SessionDirectory, configuration.ArchiveDirectory)
	if archiveError != nil {
		return archiveError
	}
	if len(archivedPaths) > 0 {
		fmt.Fprintf(service.outputWriter, archivedSummaryOutputTemplate, len(archivedPaths))
	}

	for _, alertMessage := range report.Alerts {
		fmt.Fprintf(service.outputWriter, alertOutputTemplateConstant, alertMessage)
	}

	if appendError := service.appendMemoryEntry(configuration.MemoryDirectory, report); appendError != nil {
		return appendError
	}

	service.logger.Info(auditCompletedLogMessageConstant,
		zap.Int64(registrySizeLogFieldConstant, report.RegistrySizeKB),
		zap.Int64(totalSessionsLogFieldConstant, report.TotalSessions),
		zap.Int64(cronSessionsLogFieldConstant, report.CronSessions),
		zap.Int(alertCountLogFieldConstant, len(report.Alerts)),
		zap.Int(archivedCountLogFieldConstant, len(archivedPaths)),
	)
	return nil
}

func (service *Service) appendMemoryEntry(memoryDirectory string, report HealthReport) error {
	if mkdirError := service.fileSystem.MkdirAll(memoryDirectory, archiveDirectoryPermissions); mkdirError != nil {
		return fmt.Errorf(memoryMkdirErrorTemplateConstant, memoryDirectory, mkdirError)
	}

	entryTime := report.Timestamp
	memoryFilePath := filepath.Join(memoryDirectory, fmt.Sprintf(memoryFileNameTemplateConstant, entryTime.Format(memoryDateLayoutConstant)))
	entryContent := FormatMemoryEntry(report, entryTime)
	if appendError := service.fileSystem.AppendFile(memoryFilePath, []byte(entryContent), memoryFilePermissionsConstant); appendError != nil {
		return fmt.Errorf(memoryWriteErrorTemplateConstant, memoryFilePath, appendError)
	}
	return nil
}
