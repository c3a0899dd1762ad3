package iteration

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/miloslab/labops/internal/execshell"
)

const fileSystemNotConfiguredMessage = "iteration file system not configured"

// ErrFileSystemNotConfigured is reported when a collaborator is built without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessage)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes the filesystem operations required by the iteration service.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	ReadDirectory(path string) ([]fs.DirEntry, error)
	WalkFiles(root string, walkFunction fs.WalkDirFunc) error
	MkdirAll(path string, permissions fs.FileMode) error
	AppendFile(path string, content []byte, permissions fs.FileMode) error
}

// CurlExecutor runs curl for GitHub API access.
type CurlExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PythonExecutor runs the python3 interpreter for entry script smoke tests.
type PythonExecutor interface {
	ExecutePython(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager exposes the git operations used while iterating repositories.
type RepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string, depth int) error
	PullBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	StageAllChanges(executionContext context.Context, repositoryPath string) error
	CommitChanges(executionContext context.Context, repositoryPath string, commitMessage string) error
}

// OSFileSystem implements FileSystem using the os and path/filepath packages.
type OSFileSystem struct{}

// Stat returns file information for the provided path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at the provided path.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDirectory lists the entries of the provided directory.
func (OSFileSystem) ReadDirectory(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// WalkFiles walks the tree rooted at root, invoking walkFunction per entry.
func (OSFileSystem) WalkFiles(root string, walkFunction fs.WalkDirFunc) error {
	return filepath.WalkDir(root, walkFunction)
}

// MkdirAll creates the directory path along with any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// AppendFile appends content to the file at path, creating it when absent.
func (OSFileSystem) AppendFile(path string, content []byte, permissions fs.FileMode) error {
	fileHandle, openError := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permissions)
	if openError != nil {
		return openError
	}
	_, writeError := fileHandle.Write(content)
	closeError := fileHandle.Close()
	if writeError != nil {
		return writeError
	}
	return closeError
}
