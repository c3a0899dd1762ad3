package gitrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/miloslab/labops/internal/execshell"
)

const (
	statusSubcommandConstant          = "status"
	porcelainFlagConstant             = "--porcelain"
	cloneSubcommandConstant           = "clone"
	depthFlagConstant                 = "--depth"
	pullSubcommandConstant            = "pull"
	pushSubcommandConstant            = "push"
	addSubcommandConstant             = "add"
	addAllFlagConstant                = "-A"
	commitSubcommandConstant          = "commit"
	commitMessageFlagConstant         = "-m"
	executorNotConfiguredMessage      = "git executor not configured"
	repositoryPathRequiredMessage     = "repository path required"
	remoteURLRequiredMessageConstant  = "remote url required"
	commitMessageRequiredMessage      = "commit message required"
	branchNameRequiredMessageConstant = "branch name required"
)

// Sentinel errors reported by RepositoryManager operations.
var (
	ErrExecutorNotConfigured  = errors.New(executorNotConfiguredMessage)
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessage)
	ErrRemoteURLRequired      = errors.New(remoteURLRequiredMessageConstant)
	ErrCommitMessageRequired  = errors.New(commitMessageRequiredMessage)
	ErrBranchNameRequired     = errors.New(branchNameRequiredMessageConstant)
)

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether the repository has no staged or unstaged changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return false, ErrRepositoryPathRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// CloneRepository clones the remote URL into the destination path with the provided depth.
// A depth of zero requests a full-history clone.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string, depth int) error {
	if len(strings.TrimSpace(remoteURL)) == 0 {
		return ErrRemoteURLRequired
	}
	if len(strings.TrimSpace(destinationPath)) == 0 {
		return ErrRepositoryPathRequired
	}

	cloneArguments := []string{cloneSubcommandConstant}
	if depth > 0 {
		cloneArguments = append(cloneArguments, depthFlagConstant, strconv.Itoa(depth))
	}
	cloneArguments = append(cloneArguments, remoteURL, destinationPath)

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: cloneArguments})
	return executionError
}

// PullBranch updates the repository from the named remote branch.
func (manager *RepositoryManager) PullBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{pullSubcommandConstant, remoteName, branchName},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// PushBranch publishes the repository to the named remote branch.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, remoteName, branchName},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// StageAllChanges stages every modification in the repository worktree.
func (manager *RepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{addSubcommandConstant, addAllFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// CommitChanges records staged changes with the provided message.
func (manager *RepositoryManager) CommitChanges(executionContext context.Context, repositoryPath string, commitMessage string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(commitMessage)) == 0 {
		return ErrCommitMessageRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, commitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}
