package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/teleops/dashstrap/models"
)

// Open opens (creating if needed) the run journal database stored as
// "<name>.db" and ensures its schema.
func Open(name string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s.db", name))
	if err != nil {
		return nil, fmt.Errorf("error opening journal database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("error creating runs table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("error creating steps table: %w", err)
	}

	return db, nil
}

// RecordRun inserts one bootstrap run and its step results in a single
// transaction and returns the new run id.
func RecordRun(db *sql.DB, status string, startedAt, finishedAt time.Time, steps []models.StepResult) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.Exec(
		"INSERT INTO runs (status, started_at, finished_at) VALUES (?, ?, ?)",
		status, startedAt.UTC(), finishedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	for i, step := range steps {
		_, err = tx.Exec(
			"INSERT INTO steps (run_id, ordinal, name, status, detail) VALUES (?, ?, ?, ?, ?)",
			runID, i, step.Name, step.Status, step.Detail,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert step %s: %w", step.Name, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return runID, nil
}

// RecentRuns returns the most recent runs, newest first, each with its
// steps in sequence order.
func RecentRuns(db *sql.DB, limit int) ([]models.Run, error) {
	query := `SELECT id, status, started_at, finished_at FROM runs ORDER BY id DESC LIMIT ?`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		// The driver will handle DATETIME -> time.Time conversion
		if err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during run row iteration: %w", err)
	}

	for i := range runs {
		steps, err := runSteps(db, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}

	return runs, nil
}

func runSteps(db *sql.DB, runID int64) ([]models.StepResult, error) {
	rows, err := db.Query(
		"SELECT name, status, detail FROM steps WHERE run_id = ? ORDER BY ordinal ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps for run %d: %w", runID, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var steps []models.StepResult
	for rows.Next() {
		var step models.StepResult
		if err := rows.Scan(&step.Name, &step.Status, &step.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan step row: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during step row iteration: %w", err)
	}

	return steps, nil
}
