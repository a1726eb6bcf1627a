package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/shared"
)

// RunRepository records pipeline run history with status transitions.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run in the running state and returns it.
func (r *RunRepository) Create(playlistID string) (*models.PipelineRun, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "pipeline_runs")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &models.PipelineRun{
		ID:         shared.GenerateID(),
		Sequence:   sequence,
		PlaylistID: playlistID,
		Status:     models.RunStatusRunning,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = r.db.Exec(`
		INSERT INTO pipeline_runs (
			id, sequence, playlist_id, playlist_name, status, stage,
			track_count, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Sequence, run.PlaylistID, run.PlaylistName, run.Status,
		run.Stage, run.TrackCount, nil, run.StartedAt, nil, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// Complete marks a run as succeeded with its final track count.
func (r *RunRepository) Complete(id, playlistName string, trackCount int) error {
	now := time.Now().UTC()
	return r.update(id, `
		UPDATE pipeline_runs
		SET status = ?, playlist_name = ?, track_count = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, models.RunStatusSucceeded, playlistName, trackCount, now, now, id)
}

// Fail marks a run as failed, recording the stage that produced the error.
func (r *RunRepository) Fail(id, stage string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	now := time.Now().UTC()
	return r.update(id, `
		UPDATE pipeline_runs
		SET status = ?, stage = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, models.RunStatusFailed, stage, msg, now, now, id)
}

func (r *RunRepository) update(id, query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: run %s not found", shared.ErrInvalidInput, id)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.PipelineRun, error) {
	run, err := scanRun(r.db.QueryRow(`
		SELECT id, sequence, playlist_id, playlist_name, status, stage,
			track_count, error_message, started_at, completed_at, created_at, updated_at
		FROM pipeline_runs WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s not found", shared.ErrInvalidInput, id)
	}
	return run, err
}

// List retrieves the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, sequence, playlist_id, playlist_name, status, stage,
			track_count, error_message, started_at, completed_at, created_at, updated_at
		FROM pipeline_runs ORDER BY sequence DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.PipelineRun, error) {
	var run models.PipelineRun
	var errorMessage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.Sequence, &run.PlaylistID, &run.PlaylistName,
		&run.Status, &run.Stage, &run.TrackCount, &errorMessage,
		&run.StartedAt, &completedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return &run, nil
}
