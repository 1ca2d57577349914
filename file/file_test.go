package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchingFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"telecom_customer_records_20250101_120000.csv",
		"telecom_customer_insights_20250101_120000.csv",
		"notes.txt",
		".hidden.csv",
	} {
		err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	testCases := []struct {
		name     string
		pattern  string
		expected int
	}{
		{name: "all csv files", pattern: "*.csv", expected: 2},
		{name: "records only", pattern: "telecom_customer_records_*.csv", expected: 1},
		{name: "no matches", pattern: "*.json", expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := MatchingFiles(dir, tc.pattern)
			require.NoError(t, err)
			assert.Len(t, files, tc.expected)
		})
	}
}

func TestMatchingFilesMissingDir(t *testing.T) {
	files, err := MatchingFiles(filepath.Join(t.TempDir(), "does-not-exist"), "*.csv")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMatchingFilesInvalidPattern(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644)
	require.NoError(t, err)

	_, err = MatchingFiles(dir, "[")
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.py")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.True(t, Exists(path))
	assert.False(t, Exists(filepath.Join(dir, "missing.py")))
	assert.False(t, Exists(dir), "directories are not entry points")
}
