package health

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

const (
	resetSessionGlobPatternConstant   = "*.reset.*"
	deletedSessionGlobPatternConstant = "*.deleted.*"
	archiveDirectoryNameTemplate      = "sessions-%s"
	archiveDateLayoutConstant         = "20060102"
	archiveDirectoryPermissions       = fs.FileMode(0o755)
	collisionSuffixTemplateConstant   = "%s.%d"
	archiveGlobErrorTemplateConstant  = "listing stale sessions in %s: %w"
	archiveMoveErrorTemplateConstant  = "archiving %s: %w"
	archiveMkdirErrorTemplateConstant = "creating archive directory %s: %w"
	archiverClockNotConfiguredMessage = "session archiver clock not configured"
)

// ErrClockNotConfigured is reported when an archiver is built without a clock.
var ErrClockNotConfigured = errors.New(archiverClockNotConfiguredMessage)

// SessionArchiver moves stale reset and deleted session files into a dated
// archive directory.
type SessionArchiver struct {
	fileSystem FileSystem
	clock      Clock
}

// NewSessionArchiver constructs a SessionArchiver with the provided collaborators.
func NewSessionArchiver(fileSystem FileSystem, clock Clock) (*SessionArchiver, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if clock == nil {
		return nil, ErrClockNotConfigured
	}
	return &SessionArchiver{fileSystem: fileSystem, clock: clock}, nil
}

// ArchiveStaleSessions moves files matching the reset and deleted patterns
// from the session directory into <archiveRoot>/sessions-<YYYYMMDD> and
// returns the new paths. Running against a directory without matching files
// moves nothing and returns an empty slice.
func (archiver *SessionArchiver) ArchiveStaleSessions(sessionDirectory string, archiveRoot string) ([]string, error) {
	archiveDirectoryName := fmt.Sprintf(archiveDirectoryNameTemplate, archiver.clock.Now().Format(archiveDateLayoutConstant))
	archiveDirectory := filepath.Join(archiveRoot, archiveDirectoryName)

	archivedPaths := make([]string, 0)
	for _, globPattern := range []string{resetSessionGlobPatternConstant, deletedSessionGlobPatternConstant} {
		stalePaths, globError := archiver.fileSystem.Glob(filepath.Join(sessionDirectory, globPattern))
		if globError != nil {
			return archivedPaths, fmt.Errorf(archiveGlobErrorTemplateConstant, sessionDirectory, globError)
		}

		for _, stalePath := range stalePaths {
			if mkdirError := archiver.fileSystem.MkdirAll(archiveDirectory, archiveDirectoryPermissions); mkdirError != nil {
				return archivedPaths, fmt.Errorf(archiveMkdirErrorTemplateConstant, archiveDirectory, mkdirError)
			}

			destinationPath, destinationError := archiver.resolveDestination(archiveDirectory, filepath.Base(stalePath))
			if destinationError != nil {
				return archivedPaths, fmt.Errorf(archiveMoveErrorTemplateConstant, stalePath, destinationError)
			}
			if renameError := archiver.fileSystem.Rename(stalePath, destinationPath); renameError != nil {
				return archivedPaths, fmt.Errorf(archiveMoveErrorTemplateConstant, stalePath, renameError)
			}
			archivedPaths = append(archivedPaths, destinationPath)
		}
	}
	return archivedPaths, nil
}

// resolveDestination keeps the original file name unless the archive directory
// already holds it, in which case a numeric suffix disambiguates the copies.
// Stat failures other than absence propagate instead of counting as taken.
func (archiver *SessionArchiver) resolveDestination(archiveDirectory string, fileName string) (string, error) {
	candidatePath := filepath.Join(archiveDirectory, fileName)
	for suffixOrdinal := 2; ; suffixOrdinal++ {
		_, statError := archiver.fileSystem.Stat(candidatePath)
		if errors.Is(statError, fs.ErrNotExist) {
			return candidatePath, nil
		}
		if statError != nil {
			return "", statError
		}
		candidatePath = filepath.Join(archiveDirectory, fmt.Sprintf(collisionSuffixTemplateConstant, fileName, suffixOrdinal))
	}
}
