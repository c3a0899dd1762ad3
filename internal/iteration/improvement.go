package iteration

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	pythonFileExtensionConstant       = ".py"
	todoMarkerConstant                = "# TODO"
	fixmeMarkerConstant               = "# FIXME"
	readmeFileNameConstant            = "README.md"
	licenseFileNameConstant           = "LICENSE"
	installationSectionHeaderConstant = "## Installation"
	setupSectionHeaderConstant        = "## Setup"
	licenseSectionHeaderConstant      = "## License"
	todoImprovementTemplateConstant   = "Implement TODO in %s"
	readmeSectionsImprovementConstant = "Add installation/setup instructions to README"
	licenseImprovementConstant        = "Add LICENSE file"
	missingReadmeImprovementConstant  = "Add README.md"
	fallbackImprovementConstant       = "General bug fixes and code cleanup"
)

// ImprovementAdvisor proposes a single follow-up task for a repository by
// inspecting its sources and documentation.
type ImprovementAdvisor struct {
	fileSystem FileSystem
}

// NewImprovementAdvisor constructs an ImprovementAdvisor.
func NewImprovementAdvisor(fileSystem FileSystem) (*ImprovementAdvisor, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &ImprovementAdvisor{fileSystem: fileSystem}, nil
}

// Propose returns one improvement for the repository, preferring unfinished
// code markers, then documentation gaps, then missing project files, with a
// generic cleanup proposal as the fallback.
func (advisor *ImprovementAdvisor) Propose(repositoryPath string) string {
	if todoFileName, found := advisor.findUnfinishedMarker(repositoryPath); found {
		return fmt.Sprintf(todoImprovementTemplateConstant, todoFileName)
	}

	readmePath := filepath.Join(repositoryPath, readmeFileNameConstant)
	if readmeContent, readError := advisor.fileSystem.ReadFile(readmePath); readError == nil {
		readmeText := string(readmeContent)
		if !strings.Contains(readmeText, installationSectionHeaderConstant) && !strings.Contains(readmeText, setupSectionHeaderConstant) {
			return readmeSectionsImprovementConstant
		}
		if !strings.Contains(readmeText, licenseSectionHeaderConstant) {
			return licenseImprovementConstant
		}
	} else {
		return missingReadmeImprovementConstant
	}

	if _, statError := advisor.fileSystem.Stat(filepath.Join(repositoryPath, licenseFileNameConstant)); statError != nil {
		return licenseImprovementConstant
	}

	return fallbackImprovementConstant
}

// findUnfinishedMarker walks the repository and returns the first Python file
// carrying a TODO or FIXME marker. Unreadable files are skipped.
func (advisor *ImprovementAdvisor) findUnfinishedMarker(repositoryPath string) (string, bool) {
	var markedFileName string
	_ = advisor.fileSystem.WalkFiles(repositoryPath, func(candidatePath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}
		if directoryEntry.IsDir() || filepath.Ext(candidatePath) != pythonFileExtensionConstant {
			return nil
		}
		if strings.HasPrefix(directoryEntry.Name(), hiddenEntryPrefixConstant) {
			return nil
		}
		fileContent, readError := advisor.fileSystem.ReadFile(candidatePath)
		if readError != nil {
			return nil
		}
		fileText := string(fileContent)
		if strings.Contains(fileText, todoMarkerConstant) || strings.Contains(fileText, fixmeMarkerConstant) {
			markedFileName = directoryEntry.Name()
			return fs.SkipAll
		}
		return nil
	})
	return markedFileName, len(markedFileName) > 0
}
