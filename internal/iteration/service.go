package iteration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/miloslab/labops/internal/execshell"
)

const (
	serviceCatalogNotConfiguredMessage    = "iteration service catalog client not configured"
	serviceRepositoriesNotConfiguredMsg   = "iteration service repository manager not configured"
	servicePythonNotConfiguredMessage     = "iteration service python executor not configured"
	serviceWriterNotConfiguredMessage     = "iteration service output writer not configured"
	originRemoteNameConstant              = "origin"
	mainBranchNameConstant                = "main"
	masterBranchNameConstant              = "master"
	shallowCloneDepthConstant             = 1
	commitMessageTemplateConstant         = "%s: %s iteration - %s"
	weekOutputTemplateConstant            = "Weekly iteration for %s\n"
	catalogSizeOutputTemplateConstant     = "Found %d repositories\n"
	emptyCatalogOutputConstant            = "No repositories found\n"
	projectOutputTemplateConstant         = "Project: %s\n"
	skipOutputTemplateConstant            = "Skipping %s: %v\n"
	noEntryScriptOutputConstant           = "No testable entry script found\n"
	testPassedOutputConstant              = "Test passed\n"
	testFailedOutputTemplateConstant      = "Test failed: %v\n"
	improvementOutputTemplateConstant     = "Improvement: %s\n"
	nothingToCommitOutputConstant         = "No changes to commit\n"
	pushFailedOutputTemplateConstant      = "Push failed: %v\n"
	pushedOutputConstant                  = "Pushed to origin\n"
	completeOutputTemplateConstant        = "Weekly iteration complete (%d repositories)\n"
	credentialsUnavailableLogMessage      = "github credentials unavailable, continuing anonymously"
	pullFallbackFailedLogMessageConstant  = "pull failed on both main and master"
	publishStepFailedLogMessageConstant   = "publish step failed"
	repositoryLogFieldConstant            = "repository"
)

// Sentinel errors reported during service construction.
var (
	ErrCatalogClientNotConfigured     = errors.New(serviceCatalogNotConfiguredMessage)
	ErrRepositoryManagerNotConfigured = errors.New(serviceRepositoriesNotConfiguredMsg)
	ErrPythonExecutorNotConfigured    = errors.New(servicePythonNotConfiguredMessage)
	ErrOutputWriterNotConfigured      = errors.New(serviceWriterNotConfiguredMessage)
)

// Service performs the weekly repository iteration.
type Service struct {
	logger            *zap.Logger
	fileSystem        FileSystem
	catalogClient     *CatalogClient
	repositoryManager RepositoryManager
	pythonExecutor    PythonExecutor
	advisor           *ImprovementAdvisor
	clock             Clock
	outputWriter      io.Writer
}

// NewService constructs an iteration Service with the provided collaborators.
// A nil logger downgrades to a no-op logger and a nil clock to the system clock.
func NewService(logger *zap.Logger, fileSystem FileSystem, catalogClient *CatalogClient, repositoryManager RepositoryManager, pythonExecutor PythonExecutor, clock Clock, outputWriter io.Writer) (*Service, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if catalogClient == nil {
		return nil, ErrCatalogClientNotConfigured
	}
	if repositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if pythonExecutor == nil {
		return nil, ErrPythonExecutorNotConfigured
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

	advisor, advisorError := NewImprovementAdvisor(fileSystem)
	if advisorError != nil {
		return nil, advisorError
	}

	service := &Service{
		logger:            logger,
		fileSystem:        fileSystem,
		catalogClient:     catalogClient,
		repositoryManager: repositoryManager,
		pythonExecutor:    pythonExecutor,
		advisor:           advisor,
		clock:             clock,
		outputWriter:      outputWriter,
	}
	return service, nil
}

// Run executes the weekly iteration over every repository in the catalog.
// Per-repository failures are reported on the output writer and never abort
// the run; the process outcome stays successful.
func (service *Service) Run(executionContext context.Context, configuration CommandConfiguration) error {
	iterationWeek := FormatIterationWeek(service.clock.Now())
	fmt.Fprintf(service.outputWriter, weekOutputTemplateConstant, iterationWeek)

	githubToken, tokenError := LoadGitHubToken(service.fileSystem, configuration.CredentialsFile)
	if tokenError != nil {
		service.logger.Warn(credentialsUnavailableLogMessage, zap.Error(tokenError))
		githubToken = ""
	}

	repositories := service.catalogClient.FetchRepositories(executionContext, configuration.GitHubUser)
	if len(repositories) == 0 {
		fmt.Fprint(service.outputWriter, emptyCatalogOutputConstant)
		return nil
	}
	fmt.Fprintf(service.outputWriter, catalogSizeOutputTemplateConstant, len(repositories))

	entrypointResolver, resolverError := NewEntrypointResolver(service.fileSystem, configuration.EntrypointsFile)
	if resolverError != nil {
		return resolverError
	}

	recordedChanges := make([]RecordedChange, 0, len(repositories))
	for _, repository := range repositories {
		fmt.Fprintf(service.outputWriter, projectOutputTemplateConstant, repository.Name)

		repositoryPath := filepath.Join(configuration.LabDirectory, repository.Name)
		if ensureError := service.ensureRepository(executionContext, repository, repositoryPath, configuration.GitHubUser, githubToken); ensureError != nil {
			fmt.Fprintf(service.outputWriter, skipOutputTemplateConstant, repository.Name, ensureError)
			continue
		}

		service.testEntryScript(executionContext, entrypointResolver, repository.Name, repositoryPath, configuration.TestTimeoutSeconds)

		improvement := service.advisor.Propose(repositoryPath)
		fmt.Fprintf(service.outputWriter, improvementOutputTemplateConstant, improvement)
		recordedChanges = append(recordedChanges, RecordedChange{Project: repository.Name, Improvement: improvement})

		if !configuration.DryRun {
			service.publish(executionContext, repository.Name, repositoryPath, iterationWeek, improvement)
		}
	}

	if journalError := AppendJournalEntry(service.fileSystem, configuration.MemoryFile, iterationWeek, service.clock.Now(), recordedChanges); journalError != nil {
		return journalError
	}

	fmt.Fprintf(service.outputWriter, completeOutputTemplateConstant, len(repositories))
	return nil
}

// ensureRepository clones an absent repository shallowly and otherwise pulls
// the default branch, falling back from main to master. Pull failures are
// tolerated so a stale copy still gets iterated.
func (service *Service) ensureRepository(executionContext context.Context, repository RepositoryRecord, repositoryPath string, userName string, githubToken string) error {
	_, statError := service.fileSystem.Stat(repositoryPath)
	if statError != nil {
		if !errors.Is(statError, fs.ErrNotExist) {
			return statError
		}
		cloneURL := BuildAuthenticatedCloneURL(repository.CloneURL, userName, githubToken)
		return service.repositoryManager.CloneRepository(executionContext, cloneURL, repositoryPath, shallowCloneDepthConstant)
	}

	if pullError := service.repositoryManager.PullBranch(executionContext, repositoryPath, originRemoteNameConstant, mainBranchNameConstant); pullError != nil {
		if fallbackError := service.repositoryManager.PullBranch(executionContext, repositoryPath, originRemoteNameConstant, masterBranchNameConstant); fallbackError != nil {
			service.logger.Warn(pullFallbackFailedLogMessageConstant, zap.String(repositoryLogFieldConstant, repository.Name), zap.Error(fallbackError))
		}
	}
	return nil
}

// testEntryScript smoke-tests the repository entry script under a wall-clock
// timeout. Absent scripts are skipped; failures are reported without
// interrupting the iteration.
func (service *Service) testEntryScript(executionContext context.Context, resolver *EntrypointResolver, repositoryName string, repositoryPath string, timeoutSeconds int) {
	entrypointPath, found := resolver.ResolveEntrypoint(repositoryPath, repositoryName)
	if !found {
		fmt.Fprint(service.outputWriter, noEntryScriptOutputConstant)
		return
	}

	testContext, cancelTest := context.WithTimeout(executionContext, time.Duration(timeoutSeconds)*time.Second)
	defer cancelTest()

	commandDetails := execshell.CommandDetails{Arguments: []string{entrypointPath}, WorkingDirectory: repositoryPath}
	if _, testError := service.pythonExecutor.ExecutePython(testContext, commandDetails); testError != nil {
		fmt.Fprintf(service.outputWriter, testFailedOutputTemplateConstant, testError)
		return
	}
	fmt.Fprint(service.outputWriter, testPassedOutputConstant)
}

// publish stages, commits, and pushes the repository. A clean worktree after
// staging means nothing to commit; push falls back from main to master.
func (service *Service) publish(executionContext context.Context, repositoryName string, repositoryPath string, iterationWeek string, improvement string) {
	if stageError := service.repositoryManager.StageAllChanges(executionContext, repositoryPath); stageError != nil {
		service.logger.Warn(publishStepFailedLogMessageConstant, zap.String(repositoryLogFieldConstant, repositoryName), zap.Error(stageError))
		return
	}

	worktreeClean, statusError := service.repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
	if statusError != nil {
		service.logger.Warn(publishStepFailedLogMessageConstant, zap.String(repositoryLogFieldConstant, repositoryName), zap.Error(statusError))
		return
	}
	if worktreeClean {
		fmt.Fprint(service.outputWriter, nothingToCommitOutputConstant)
		return
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, iterationWeek, repositoryName, improvement)
	if commitError := service.repositoryManager.CommitChanges(executionContext, repositoryPath, commitMessage); commitError != nil {
		service.logger.Warn(publishStepFailedLogMessageConstant, zap.String(repositoryLogFieldConstant, repositoryName), zap.Error(commitError))
		return
	}

	if pushError := service.repositoryManager.PushBranch(executionContext, repositoryPath, originRemoteNameConstant, mainBranchNameConstant); pushError != nil {
		if fallbackError := service.repositoryManager.PushBranch(executionContext, repositoryPath, originRemoteNameConstant, masterBranchNameConstant); fallbackError != nil {
			fmt.Fprintf(service.outputWriter, pushFailedOutputTemplateConstant, fallbackError)
			return
		}
	}
	fmt.Fprint(service.outputWriter, pushedOutputConstant)
}
