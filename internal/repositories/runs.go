package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// DefaultListLimit is the number of runs List returns when no limit is given.
const DefaultListLimit = 20

// RunRepository stores every playlist write made by a drive update, with the URIs in written order.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its items, assigning the ID and sequence.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.SourcePlaylistID == "" || run.TargetPlaylistID == "" {
		return fmt.Errorf("%w: run requires source and target playlist ids", shared.ErrInvalidArgument)
	}

	sequence, err := NextSequence(ctx, r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := shared.GenerateID()
	query := `
		INSERT INTO runs (id, sequence, source_playlist_id, target_playlist_id, track_count, episode_count, snapshot_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		sequence,
		run.SourcePlaylistID,
		run.TargetPlaylistID,
		run.TrackCount,
		run.EpisodeCount,
		run.SnapshotID,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO run_items (run_id, position, uri) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare run item insert: %w", err)
	}
	defer stmt.Close()

	for i, uri := range run.URIs {
		if _, err := stmt.ExecContext(ctx, id, i, uri); err != nil {
			return fmt.Errorf("failed to insert run item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	run.Sequence = sequence
	return nil
}

// Record implements tasks.RunRecorder.
func (r *RunRepository) Record(ctx context.Context, run *models.Run) error {
	return r.Create(ctx, run)
}

const selectRun = `
	SELECT id, sequence, source_playlist_id, target_playlist_id, track_count, episode_count, snapshot_id, created_at
	FROM runs
`

// Get retrieves a run and its items by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	return r.getOne(ctx, selectRun+"WHERE id = ?", id)
}

// GetBySequence retrieves a run and its items by its sequence number.
func (r *RunRepository) GetBySequence(ctx context.Context, sequence int) (*models.Run, error) {
	return r.getOne(ctx, selectRun+"WHERE sequence = ?", sequence)
}

func (r *RunRepository) getOne(ctx context.Context, query string, arg any) (*models.Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", shared.ErrRunNotFound, arg)
	}
	if err != nil {
		return nil, err
	}

	if run.URIs, err = r.items(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first, without their items.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, selectRun+"ORDER BY sequence DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Delete removes a run and its items.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_items WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete run items: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return tx.Commit()
}

func (r *RunRepository) items(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT uri FROM run_items WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer rows.Close()

	uris := []string{}
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		uris = append(uris, uri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run items: %w", err)
	}

	return uris, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var run models.Run
	err := s.Scan(
		&run.ID,
		&run.Sequence,
		&run.SourcePlaylistID,
		&run.TargetPlaylistID,
		&run.TrackCount,
		&run.EpisodeCount,
		&run.SnapshotID,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
