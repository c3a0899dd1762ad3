package iteration

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	entrypointMainLogicalNameConstant    = "main"
	entrypointProjectLogicalNameConstant = "project"
	entrypointRunLogicalNameConstant     = "run"
	entrypointBotLogicalNameConstant     = "bot"
	entrypointAppLogicalNameConstant     = "app"
	mainScriptFileNameConstant           = "main.py"
	runScriptFileNameConstant            = "run.py"
	botScriptFileNameConstant            = "bot.py"
	appScriptFileNameConstant            = "app.py"
	projectScriptFileNameTemplate        = "%s.py"
	hiddenEntryPrefixConstant            = "."
	entrypointsParseErrorTemplate        = "parsing entrypoints file %s: %w"
)

// rootEntrypointOrder fixes the lookup order of logical entry names at the
// repository root.
var rootEntrypointOrder = []string{
	entrypointMainLogicalNameConstant,
	entrypointProjectLogicalNameConstant,
	entrypointRunLogicalNameConstant,
	entrypointBotLogicalNameConstant,
	entrypointAppLogicalNameConstant,
}

// nestedEntrypointOrder fixes the lookup order inside first-level subdirectories.
var nestedEntrypointOrder = []string{
	entrypointMainLogicalNameConstant,
	entrypointRunLogicalNameConstant,
	entrypointBotLogicalNameConstant,
}

type entrypointOverrides struct {
	Root   map[string]string `yaml:"root"`
	Nested map[string]string `yaml:"nested"`
}

// EntrypointResolver locates the testable entry script of a repository using
// a fixed mapping from logical entry names to script file names, optionally
// overridden from a YAML file.
type EntrypointResolver struct {
	fileSystem FileSystem
	overrides  entrypointOverrides
}

// NewEntrypointResolver constructs an EntrypointResolver. An empty override
// path keeps the built-in mapping; an absent override file is tolerated.
func NewEntrypointResolver(fileSystem FileSystem, overridePath string) (*EntrypointResolver, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	resolver := &EntrypointResolver{fileSystem: fileSystem}
	if len(strings.TrimSpace(overridePath)) == 0 {
		return resolver, nil
	}

	overrideContent, readError := fileSystem.ReadFile(overridePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return resolver, nil
		}
		return nil, readError
	}
	if unmarshalError := yaml.Unmarshal(overrideContent, &resolver.overrides); unmarshalError != nil {
		return nil, fmt.Errorf(entrypointsParseErrorTemplate, overridePath, unmarshalError)
	}
	return resolver, nil
}

// ResolveEntrypoint returns the path of the repository's entry script. Root
// candidates are checked first, then one level of non-hidden subdirectories.
// The second return value reports whether a script was found.
func (resolver *EntrypointResolver) ResolveEntrypoint(repositoryPath string, repositoryName string) (string, bool) {
	for _, logicalName := range rootEntrypointOrder {
		candidatePath := filepath.Join(repositoryPath, resolver.rootFileName(logicalName, repositoryName))
		if resolver.fileExists(candidatePath) {
			return candidatePath, true
		}
	}

	directoryEntries, readError := resolver.fileSystem.ReadDirectory(repositoryPath)
	if readError != nil {
		return "", false
	}
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() || strings.HasPrefix(directoryEntry.Name(), hiddenEntryPrefixConstant) {
			continue
		}
		for _, logicalName := range nestedEntrypointOrder {
			candidatePath := filepath.Join(repositoryPath, directoryEntry.Name(), resolver.nestedFileName(logicalName))
			if resolver.fileExists(candidatePath) {
				return candidatePath, true
			}
		}
	}
	return "", false
}

func (resolver *EntrypointResolver) rootFileName(logicalName string, repositoryName string) string {
	if overrideFileName, overridden := resolver.overrides.Root[logicalName]; overridden {
		return overrideFileName
	}
	switch logicalName {
	case entrypointProjectLogicalNameConstant:
		return fmt.Sprintf(projectScriptFileNameTemplate, repositoryName)
	case entrypointRunLogicalNameConstant:
		return runScriptFileNameConstant
	case entrypointBotLogicalNameConstant:
		return botScriptFileNameConstant
	case entrypointAppLogicalNameConstant:
		return appScriptFileNameConstant
	default:
		return mainScriptFileNameConstant
	}
}

func (resolver *EntrypointResolver) nestedFileName(logicalName string) string {
	if overrideFileName, overridden := resolver.overrides.Nested[logicalName]; overridden {
		return overrideFileName
	}
	switch logicalName {
	case entrypointRunLogicalNameConstant:
		return runScriptFileNameConstant
	case entrypointBotLogicalNameConstant:
		return botScriptFileNameConstant
	default:
		return mainScriptFileNameConstant
	}
}

func (resolver *EntrypointResolver) fileExists(candidatePath string) bool {
	fileInformation, statError := resolver.fileSystem.Stat(candidatePath)
	return statError == nil && !fileInformation.IsDir()
}
