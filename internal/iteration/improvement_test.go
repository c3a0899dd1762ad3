package iteration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miloslab/labops/internal/iteration"
)

func newImprovementAdvisor(testInstance *testing.T) *iteration.ImprovementAdvisor {
	advisor, constructionError := iteration.NewImprovementAdvisor(iteration.OSFileSystem{})
	require.NoError(testInstance, constructionError)
	return advisor
}

func writeRepositoryContent(testInstance *testing.T, repositoryPath string, relativePath string, content string) {
	filePath := filepath.Join(repositoryPath, relativePath)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
}

func TestProposeImprovement(testInstance *testing.T) {
	completeReadmeConstant := "# Sample\n\n## Installation\n\npip install\n\n## License\n\nMIT\n"

	testCases := []struct {
		name                string
		prepareRepository   func(subtestInstance *testing.T, repositoryPath string)
		expectedImprovement string
	}{
		{
			name: "todo_marker_wins",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "bot.py", "# TODO: handle retries\n")
				writeRepositoryContent(subtestInstance, repositoryPath, "README.md", "# Sample\n")
			},
			expectedImprovement: "Implement TODO in bot.py",
		},
		{
			name: "fixme_marker_counts_as_unfinished",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "worker.py", "# FIXME: flaky parser\n")
			},
			expectedImprovement: "Implement TODO in worker.py",
		},
		{
			name: "readme_missing_installation_section",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "README.md", "# Sample\n\n## License\n\nMIT\n")
			},
			expectedImprovement: "Add installation/setup instructions to README",
		},
		{
			name: "readme_missing_license_section",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "README.md", "# Sample\n\n## Setup\n\npip install\n")
			},
			expectedImprovement: "Add LICENSE file",
		},
		{
			name:                "missing_readme",
			prepareRepository:   func(_ *testing.T, _ string) {},
			expectedImprovement: "Add README.md",
		},
		{
			name: "missing_license_file",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "README.md", completeReadmeConstant)
			},
			expectedImprovement: "Add LICENSE file",
		},
		{
			name: "fallback_to_general_cleanup",
			prepareRepository: func(subtestInstance *testing.T, repositoryPath string) {
				writeRepositoryContent(subtestInstance, repositoryPath, "README.md", completeReadmeConstant)
				writeRepositoryContent(subtestInstance, repositoryPath, "LICENSE", "MIT\n")
			},
			expectedImprovement: "General bug fixes and code cleanup",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			repositoryPath := subtestInstance.TempDir()
			testCase.prepareRepository(subtestInstance, repositoryPath)

			advisor := newImprovementAdvisor(subtestInstance)
			require.Equal(subtestInstance, testCase.expectedImprovement, advisor.Propose(repositoryPath))
		})
	}
}
