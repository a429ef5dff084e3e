package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newRun(uris ...string) *models.Run {
	return &models.Run{
		SourcePlaylistID: "37i9dQZF1EfJpoXPziNMRg",
		TargetPlaylistID: "target",
		TrackCount:       len(uris) - 1,
		EpisodeCount:     1,
		SnapshotID:       "snap",
		URIs:             uris,
		CreatedAt:        time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(context.Background(), db, "runs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(context.Background(), db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("spotify:episode:e1", "spotify:track:t1")

		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence)
		}
	})

	t.Run("Create requires playlist ids", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewRunRepository(db).Create(ctx, &models.Run{SourcePlaylistID: "src"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		uris := []string{"spotify:episode:e1", "spotify:track:t1", "spotify:track:t2"}
		run := newRun(uris...)
		if err := repo.Record(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}

		retrieved, err := repo.Get(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.SnapshotID != "snap" || retrieved.TrackCount != 2 || retrieved.EpisodeCount != 1 {
			t.Errorf("unexpected run %+v", retrieved)
		}
		if !retrieved.CreatedAt.Equal(run.CreatedAt) {
			t.Errorf("expected created_at %v, got %v", run.CreatedAt, retrieved.CreatedAt)
		}
		if !slices.Equal(retrieved.URIs, uris) {
			t.Errorf("expected uris %v, got %v", uris, retrieved.URIs)
		}

		bySeq, err := repo.GetBySequence(ctx, 1)
		if err != nil {
			t.Fatalf("failed to get run by sequence: %v", err)
		}
		if bySeq.ID != run.ID {
			t.Errorf("expected %s, got %s", run.ID, bySeq.ID)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get(ctx, "nope"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if _, err := repo.GetBySequence(ctx, 9); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for range 3 {
			if err := repo.Create(ctx, newRun("spotify:track:t1")); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Sequence != 3 || runs[1].Sequence != 2 {
			t.Errorf("expected newest first, got %d then %d", runs[0].Sequence, runs[1].Sequence)
		}

		all, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected default limit to return all 3 runs, got %d", len(all))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("spotify:track:t1")
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(ctx, run.ID); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(ctx, run.ID); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected deleted run to be gone, got %v", err)
		}

		var items int
		if err := db.QueryRow("SELECT COUNT(*) FROM run_items").Scan(&items); err != nil {
			t.Fatalf("failed to count items: %v", err)
		}
		if items != 0 {
			t.Errorf("expected run items to be deleted, found %d", items)
		}

		if err := repo.Delete(ctx, run.ID); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Closed database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		repo := NewRunRepository(db)
		if err := repo.Create(ctx, newRun()); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(ctx, 5); err == nil {
			t.Error("expected error on closed database")
		}
	})
}
