package health

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miloslab/labops/internal/execshell"
	"github.com/miloslab/labops/internal/ui"
	"github.com/miloslab/labops/internal/utils"
	pathutils "github.com/miloslab/labops/internal/utils/path"
)

const (
	commandUseConstant              = "cleanup"
	commandShortDescriptionConstant = "Audit session workspace health and archive stale session files"
	commandLongDescriptionConstant  = "cleanup measures the session registry, counts sessions, finds oversized transcripts, samples disk usage, archives stale reset and deleted session files, and appends a summary to the daily memory log."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the cleanup configuration resolved by the root command.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the cleanup cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	FileSystem                   FileSystem
	DiskUsageExecutor            DiskUsageExecutor
	Clock                        Clock
	CommandEventsObserver        execshell.CommandEventObserver
	HumanReadableLoggingProvider func() bool
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the cobra command for the session health audit.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	fileSystem := builder.resolveFileSystem()
	clock := builder.resolveClock()

	diskUsageExecutor, executorError := builder.resolveDiskUsageExecutor(logger)
	if executorError != nil {
		return executorError
	}

	collector, collectorError := NewMetricsCollector(fileSystem, diskUsageExecutor)
	if collectorError != nil {
		return collectorError
	}

	archiver, archiverError := NewSessionArchiver(fileSystem, clock)
	if archiverError != nil {
		return archiverError
	}

	service, serviceError := NewService(logger, collector, archiver, fileSystem, clock, utils.NewFlushingWriter(command.OutOrStdout()))
	if serviceError != nil {
		return serviceError
	}

	return service.Run(command.Context(), configuration)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.sanitize(homeExpander)
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return OSFileSystem{}
}

func (builder *CommandBuilder) resolveClock() Clock {
	if builder.Clock != nil {
		return builder.Clock
	}
	return SystemClock{}
}

func (builder *CommandBuilder) resolveDiskUsageExecutor(logger *zap.Logger) (DiskUsageExecutor, error) {
	if builder.DiskUsageExecutor != nil {
		return builder.DiskUsageExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), builder.resolveCommandEventsObserver(logger))
}

func (builder *CommandBuilder) resolveCommandEventsObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return builder.CommandEventsObserver
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
}
