package iteration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miloslab/labops/internal/iteration"
)

const sampleRepositoryNameConstant = "sample-bot"

func newEntrypointResolver(testInstance *testing.T, overridePath string) *iteration.EntrypointResolver {
	resolver, constructionError := iteration.NewEntrypointResolver(iteration.OSFileSystem{}, overridePath)
	require.NoError(testInstance, constructionError)
	return resolver
}

func writeRepositoryFile(testInstance *testing.T, repositoryPath string, relativePath string) string {
	filePath := filepath.Join(repositoryPath, relativePath)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte("print()\n"), 0o644))
	return filePath
}

func TestResolveEntrypoint(testInstance *testing.T) {
	testCases := []struct {
		name             string
		repositoryFiles  []string
		expectedRelative string
		expectedFound    bool
	}{
		{
			name:             "main_script_preferred",
			repositoryFiles:  []string{"main.py", "run.py"},
			expectedRelative: "main.py",
			expectedFound:    true,
		},
		{
			name:             "repository_named_script",
			repositoryFiles:  []string{"sample-bot.py", "bot.py"},
			expectedRelative: "sample-bot.py",
			expectedFound:    true,
		},
		{
			name:             "app_script_as_last_root_candidate",
			repositoryFiles:  []string{"app.py"},
			expectedRelative: "app.py",
			expectedFound:    true,
		},
		{
			name:             "nested_script_found_one_level_down",
			repositoryFiles:  []string{"src/run.py"},
			expectedRelative: filepath.Join("src", "run.py"),
			expectedFound:    true,
		},
		{
			name:            "hidden_directories_skipped",
			repositoryFiles: []string{".ci/main.py"},
			expectedFound:   false,
		},
		{
			name:            "no_entry_script",
			repositoryFiles: []string{"notes.txt"},
			expectedFound:   false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			repositoryPath := subtestInstance.TempDir()
			for _, relativePath := range testCase.repositoryFiles {
				writeRepositoryFile(subtestInstance, repositoryPath, relativePath)
			}

			resolver := newEntrypointResolver(subtestInstance, "")
			entrypointPath, found := resolver.ResolveEntrypoint(repositoryPath, sampleRepositoryNameConstant)
			require.Equal(subtestInstance, testCase.expectedFound, found)
			if testCase.expectedFound {
				require.Equal(subtestInstance, filepath.Join(repositoryPath, testCase.expectedRelative), entrypointPath)
			}
		})
	}
}

func TestResolveEntrypointWithOverrides(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	writeRepositoryFile(testInstance, repositoryPath, "serve.py")
	writeRepositoryFile(testInstance, repositoryPath, "main.py")

	overridePath := filepath.Join(testInstance.TempDir(), "entrypoints.yaml")
	overrideContent := "root:\n  main: serve.py\n"
	require.NoError(testInstance, os.WriteFile(overridePath, []byte(overrideContent), 0o644))

	resolver := newEntrypointResolver(testInstance, overridePath)
	entrypointPath, found := resolver.ResolveEntrypoint(repositoryPath, sampleRepositoryNameConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, filepath.Join(repositoryPath, "serve.py"), entrypointPath)
}

func TestNewEntrypointResolverToleratesAbsentOverrideFile(testInstance *testing.T) {
	resolver := newEntrypointResolver(testInstance, filepath.Join(testInstance.TempDir(), "entrypoints.yaml"))
	require.NotNil(testInstance, resolver)
}

func TestNewEntrypointResolverRejectsMalformedOverrides(testInstance *testing.T) {
	overridePath := filepath.Join(testInstance.TempDir(), "entrypoints.yaml")
	require.NoError(testInstance, os.WriteFile(overridePath, []byte("root: [unbalanced"), 0o644))

	resolver, constructionError := iteration.NewEntrypointResolver(iteration.OSFileSystem{}, overridePath)
	require.Error(testInstance, constructionError)
	require.Nil(testInstance, resolver)
}
