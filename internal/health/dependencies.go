package health

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/miloslab/labops/internal/execshell"
)

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

// FileSystem exposes the filesystem operations required by the audit service.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Glob(pattern string) ([]string, error)
	Rename(oldPath string, newPath string) error
	MkdirAll(path string, permissions fs.FileMode) error
	AppendFile(path string, content []byte, permissions fs.FileMode) error
}

// DiskUsageExecutor runs the df tool for disk usage sampling.
type DiskUsageExecutor interface {
	ExecuteDiskFree(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
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

// Glob returns the paths matching the provided pattern.
func (OSFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// Rename moves a file from oldPath to newPath.
func (OSFileSystem) Rename(oldPath string, newPath string) error {
	return os.Rename(oldPath, newPath)
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
