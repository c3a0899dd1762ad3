package iteration

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miloslab/labops/internal/execshell"
	"github.com/miloslab/labops/internal/gitrepo"
	"github.com/miloslab/labops/internal/ui"
	"github.com/miloslab/labops/internal/utils"
	pathutils "github.com/miloslab/labops/internal/utils/path"
)

const (
	commandUseConstant              = "iterate"
	commandShortDescriptionConstant = "Iterate over the lab repositories: update, test, propose, and publish"
	commandLongDescriptionConstant  = "iterate fetches the configured user's GitHub repositories, clones or updates each local copy, smoke-tests its entry script, proposes a single improvement, commits and pushes the result, and journals the proposals to the weekly memory file."
	dryRunFlagNameConstant          = "dry-run"
	dryRunFlagDescriptionConstant   = "propose improvements without committing or pushing"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the iterate configuration resolved by the root command.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the iterate cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	FileSystem                   FileSystem
	CurlExecutor                 CurlExecutor
	PythonExecutor               PythonExecutor
	RepositoryManager            RepositoryManager
	Clock                        Clock
	CommandEventsObserver        execshell.CommandEventObserver
	HumanReadableLoggingProvider func() bool
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the cobra command for the weekly repository iteration.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	if dryRunFlag, flagError := command.Flags().GetBool(dryRunFlagNameConstant); flagError == nil && dryRunFlag {
		configuration.DryRun = true
	}

	fileSystem := builder.resolveFileSystem()
	clock := builder.resolveClock()

	shellExecutor, executorError := builder.resolveShellExecutor(logger)
	if executorError != nil {
		return executorError
	}

	curlExecutor := builder.resolveCurlExecutor(shellExecutor)
	pythonExecutor := builder.resolvePythonExecutor(shellExecutor)

	repositoryManager, managerError := builder.resolveRepositoryManager(shellExecutor)
	if managerError != nil {
		return managerError
	}

	catalogClient, catalogError := NewCatalogClient(curlExecutor, logger)
	if catalogError != nil {
		return catalogError
	}

	service, serviceError := NewService(logger, fileSystem, catalogClient, repositoryManager, pythonExecutor, clock, utils.NewFlushingWriter(command.OutOrStdout()))
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

func (builder *CommandBuilder) resolveShellExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if builder.CurlExecutor != nil && builder.PythonExecutor != nil && builder.RepositoryManager != nil {
		return nil, nil
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

func (builder *CommandBuilder) resolveCurlExecutor(shellExecutor *execshell.ShellExecutor) CurlExecutor {
	if builder.CurlExecutor != nil {
		return builder.CurlExecutor
	}
	return shellExecutor
}

func (builder *CommandBuilder) resolvePythonExecutor(shellExecutor *execshell.ShellExecutor) PythonExecutor {
	if builder.PythonExecutor != nil {
		return builder.PythonExecutor
	}
	return shellExecutor
}

func (builder *CommandBuilder) resolveRepositoryManager(shellExecutor *execshell.ShellExecutor) (RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}
	return gitrepo.NewRepositoryManager(shellExecutor)
}
