package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teleops/dashstrap/models"
)

func TestRecordRunAndRecentRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "journal_test"))
	require.NoError(t, err)
	defer db.Close()

	started := time.Now().Add(-time.Minute)
	finished := time.Now()

	firstSteps := []models.StepResult{
		{Name: "check-entrypoint", Status: models.StatusOK},
		{Name: "install-deps", Status: models.StatusOK},
		{Name: "ensure-data", Status: models.StatusSkipped, Detail: "found 3 existing data files"},
	}
	firstID, err := RecordRun(db, models.StatusOK, started, finished, firstSteps)
	require.NoError(t, err)

	secondSteps := []models.StepResult{
		{Name: "check-entrypoint", Status: models.StatusError, Detail: "dashboard.py not found"},
	}
	secondID, err := RecordRun(db, models.StatusError, started, finished, secondSteps)
	require.NoError(t, err)
	require.Greater(t, secondID, firstID)

	runs, err := RecentRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, secondID, runs[0].ID)
	assert.Equal(t, models.StatusError, runs[0].Status)
	require.Len(t, runs[0].Steps, 1)
	assert.Equal(t, "dashboard.py not found", runs[0].Steps[0].Detail)

	assert.Equal(t, firstID, runs[1].ID)
	assert.Equal(t, models.StatusOK, runs[1].Status)
	require.Len(t, runs[1].Steps, 3)
	assert.Equal(t, "check-entrypoint", runs[1].Steps[0].Name)
	assert.Equal(t, "install-deps", runs[1].Steps[1].Name)
	assert.Equal(t, "ensure-data", runs[1].Steps[2].Name)

	assert.WithinDuration(t, started, runs[1].StartedAt, time.Second)
	assert.WithinDuration(t, finished, runs[1].FinishedAt, time.Second)
}

func TestRecentRunsLimit(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "journal_limit"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	for i := 0; i < 5; i++ {
		_, err := RecordRun(db, models.StatusOK, now, now, nil)
		require.NoError(t, err)
	}

	runs, err := RecentRuns(db, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenIsIdempotent(t *testing.T) {
	name := filepath.Join(t.TempDir(), "journal_reopen")

	db, err := Open(name)
	require.NoError(t, err)

	now := time.Now()
	_, err = RecordRun(db, models.StatusOK, now, now, []models.StepResult{
		{Name: "check-entrypoint", Status: models.StatusOK},
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must keep existing rows and not fail on schema creation.
	db, err = Open(name)
	require.NoError(t, err)
	defer db.Close()

	runs, err := RecentRuns(db, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
