package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/tasks"
)

func TestStatusLines(t *testing.T) {
	tc := []struct {
		name string
		got  string
		want []string
	}{
		{name: "Success", got: Success("saved %d", 3), want: []string{"✓", "saved 3"}},
		{name: "Failure", got: Failure("failed"), want: []string{"✗", "failed"}},
		{name: "Warning", got: Warning("careful %s", "now"), want: []string{"⚠", "careful now"}},
		{name: "Hint", got: Hint("run %s", "setup"), want: []string{"run setup"}},
		{name: "Header", got: Header("History"), want: []string{"═══", "History"}},
		{name: "Progress", got: Progress(tasks.ProgressUpdate{Step: 1, Total: 2, Message: "Fetching"}), want: []string{"[1/2]", "Fetching"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.want {
				if !strings.Contains(tt.got, want) {
					t.Errorf("expected %q in %q", want, tt.got)
				}
			}
		})
	}
}

func TestRunTable(t *testing.T) {
	runs := []*models.Run{
		{ID: "run-2", Sequence: 2, TargetPlaylistID: "target", TrackCount: 40, EpisodeCount: 2, CreatedAt: time.Now()},
		{ID: "run-1", Sequence: 1, TargetPlaylistID: "target", TrackCount: 38, EpisodeCount: 3, CreatedAt: time.Now()},
	}

	out := RunTable(runs)
	for _, want := range []string{"RUN", "EPISODES", "#2", "#1", "run-2", "40"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
	if strings.Index(out, "#2") > strings.Index(out, "#1") {
		t.Error("expected rows in the given order")
	}
}

func TestDriveSummary(t *testing.T) {
	result := &tasks.DriveResult{
		Source:   &models.Playlist{Name: "Daily Drive", Tracks: make([]models.PlaylistTrack, 3)},
		Tracks:   []models.Track{{URI: "spotify:track:t1"}},
		Episodes: []models.Episode{{Name: "Morning News", ReleaseDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)}},
		URIs:     []string{"spotify:episode:e1", "spotify:track:t1"},
	}

	t.Run("dry run", func(t *testing.T) {
		out := DriveSummary(result, true)
		for _, want := range []string{"Daily Drive (3 items)", "Music:    1 tracks", "Morning News", "2025-03-02", "dry run: 2 items"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in summary:\n%s", want, out)
			}
		}
	})

	t.Run("written", func(t *testing.T) {
		written := *result
		written.Run = &models.Run{TargetPlaylistID: "target", SnapshotID: "snap"}
		out := DriveSummary(&written, false)
		if !strings.Contains(out, "wrote 2 items to target (snapshot snap)") {
			t.Errorf("unexpected summary:\n%s", out)
		}
	})
}
