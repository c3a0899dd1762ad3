package iteration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/miloslab/labops/internal/iteration"
)

func TestFormatIterationWeek(testInstance *testing.T) {
	testCases := []struct {
		name         string
		instant      time.Time
		expectedWeek string
	}{
		{name: "midyear_week", instant: time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC), expectedWeek: "2026-W35"},
		{name: "single_digit_week_zero_padded", instant: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC), expectedWeek: "2026-W04"},
		{name: "year_boundary_follows_iso_week", instant: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), expectedWeek: "2026-W53"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expectedWeek, iteration.FormatIterationWeek(testCase.instant))
		})
	}
}

func TestFormatJournalEntry(testInstance *testing.T) {
	entryTime := time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC)
	changes := []iteration.RecordedChange{
		{Project: "sample-bot", Improvement: "Add README.md"},
		{Project: "lab-notes", Improvement: "General bug fixes and code cleanup"},
	}

	expectedEntry := "## 2026-W35 - Weekly Iteration\n\n" +
		"**Date:** 2026-08-30T14:07:00Z\n\n" +
		"### Changes Made\n\n" +
		"- **sample-bot**: Add README.md\n" +
		"- **lab-notes**: General bug fixes and code cleanup\n" +
		"\n---\n"
	require.Equal(testInstance, expectedEntry, iteration.FormatJournalEntry("2026-W35", entryTime, changes))
}

func TestAppendJournalEntry(testInstance *testing.T) {
	entryTime := time.Date(2026, time.August, 30, 14, 7, 0, 0, time.UTC)

	testInstance.Run("creates_parent_directory_and_appends", func(subtestInstance *testing.T) {
		memoryFilePath := filepath.Join(subtestInstance.TempDir(), "memory", "weekly-iteration.md")
		changes := []iteration.RecordedChange{{Project: "sample-bot", Improvement: "Add README.md"}}

		require.NoError(subtestInstance, iteration.AppendJournalEntry(iteration.OSFileSystem{}, memoryFilePath, "2026-W35", entryTime, changes))
		require.NoError(subtestInstance, iteration.AppendJournalEntry(iteration.OSFileSystem{}, memoryFilePath, "2026-W35", entryTime, changes))

		journalContent, readError := os.ReadFile(memoryFilePath)
		require.NoError(subtestInstance, readError)
		require.Equal(subtestInstance, 2, strings.Count(string(journalContent), "## 2026-W35 - Weekly Iteration"))
	})

	testInstance.Run("empty_change_list_writes_nothing", func(subtestInstance *testing.T) {
		memoryFilePath := filepath.Join(subtestInstance.TempDir(), "memory", "weekly-iteration.md")

		require.NoError(subtestInstance, iteration.AppendJournalEntry(iteration.OSFileSystem{}, memoryFilePath, "2026-W35", entryTime, nil))
		require.NoFileExists(subtestInstance, memoryFilePath)
	})
}
