package iteration

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

const (
	iterationWeekTemplateConstant   = "%d-W%02d"
	journalHeaderTemplateConstant   = "## %s - Weekly Iteration\n\n"
	journalDateTemplateConstant     = "**Date:** %s\n\n"
	journalChangesHeaderConstant    = "### Changes Made\n\n"
	journalChangeLineTemplate       = "- **%s**: %s\n"
	journalSeparatorConstant        = "\n---\n"
	journalFilePermissionsConstant  = fs.FileMode(0o644)
	journalDirectoryPermissions     = fs.FileMode(0o755)
	journalMkdirErrorTemplateConst  = "creating journal directory %s: %w"
	journalAppendErrorTemplateConst = "appending journal %s: %w"
)

// RecordedChange captures a proposed improvement for one repository.
type RecordedChange struct {
	Project     string
	Improvement string
}

// FormatIterationWeek renders the ISO week identifier used in commit messages
// and journal headers.
func FormatIterationWeek(instant time.Time) string {
	isoYear, isoWeek := instant.ISOWeek()
	return fmt.Sprintf(iterationWeekTemplateConstant, isoYear, isoWeek)
}

// FormatJournalEntry renders the weekly Markdown block appended to the memory
// file.
func FormatJournalEntry(week string, entryTime time.Time, changes []RecordedChange) string {
	var entryBuilder strings.Builder
	entryBuilder.WriteString(fmt.Sprintf(journalHeaderTemplateConstant, week))
	entryBuilder.WriteString(fmt.Sprintf(journalDateTemplateConstant, entryTime.Format(time.RFC3339)))
	entryBuilder.WriteString(journalChangesHeaderConstant)
	for _, change := range changes {
		entryBuilder.WriteString(fmt.Sprintf(journalChangeLineTemplate, change.Project, change.Improvement))
	}
	entryBuilder.WriteString(journalSeparatorConstant)
	return entryBuilder.String()
}

// AppendJournalEntry appends the entry to the memory file, creating the parent
// directory when absent. An empty change list writes nothing.
func AppendJournalEntry(fileSystem FileSystem, memoryFilePath string, week string, entryTime time.Time, changes []RecordedChange) error {
	if len(changes) == 0 {
		return nil
	}

	journalDirectory := filepath.Dir(memoryFilePath)
	if mkdirError := fileSystem.MkdirAll(journalDirectory, journalDirectoryPermissions); mkdirError != nil {
		return fmt.Errorf(journalMkdirErrorTemplateConst, journalDirectory, mkdirError)
	}

	entryContent := FormatJournalEntry(week, entryTime, changes)
	if appendError := fileSystem.AppendFile(memoryFilePath, []byte(entryContent), journalFilePermissionsConstant); appendError != nil {
		return fmt.Errorf(journalAppendErrorTemplateConst, memoryFilePath, appendError)
	}
	return nil
}
