package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/services"
	"github.com/desertthunder/dailydrive/internal/shared"
)

type mockPlaylists struct {
	playlist *models.Playlist
	err      error
	calls    []string
}

func (m *mockPlaylists) Playlist(ctx context.Context, sess *services.Session, playlistID string) (*models.Playlist, error) {
	m.calls = append(m.calls, playlistID)
	if m.err != nil {
		return nil, m.err
	}
	return m.playlist, nil
}

type mockEpisodes struct {
	byShow map[string][]models.Episode
	err    error
}

func (m *mockEpisodes) ShowEpisodes(ctx context.Context, showID string, limit int) ([]models.Episode, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byShow[showID], nil
}

type mockWriter struct {
	playlistID string
	uris       []string
	err        error
}

func (m *mockWriter) ReplacePlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.playlistID = playlistID
	m.uris = uris
	return "snapshot-1", nil
}

type mockRecorder struct {
	runs []*models.Run
	err  error
}

func (m *mockRecorder) Record(ctx context.Context, run *models.Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

var fixedNow = time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

func newTestEngine(p *mockPlaylists, e *mockEpisodes, w *mockWriter, r RunRecorder) *DriveEngine {
	engine := NewDriveEngine(p, e, w, r, shared.NewLogger(io.Discard))
	engine.now = func() time.Time { return fixedNow }
	return engine
}

func testOpts() DriveOpts {
	return DriveOpts{
		SourcePlaylistID: "source",
		TargetPlaylistID: "target",
		Shows:            []string{"news", "stories"},
		SkipLeading:      1,
		LookbackDays:     1,
		Spacing:          DefaultSpacing,
	}
}

func testSources() (*mockPlaylists, *mockEpisodes) {
	tracks := append([]models.Track{episodeTrack("intro")}, numberedTracks(12)...)
	playlists := &mockPlaylists{playlist: playlistOf(tracks...)}
	episodes := &mockEpisodes{byShow: map[string][]models.Episode{
		"news": {
			{ID: "n1", URI: "spotify:episode:n1", ReleaseDate: fixedNow.Truncate(24 * time.Hour)},
			{ID: "n0", URI: "spotify:episode:n0", ReleaseDate: fixedNow.AddDate(0, 0, -5)},
		},
		"stories": {
			{ID: "s1", URI: "spotify:episode:s1", ReleaseDate: fixedNow.AddDate(0, 0, -1)},
		},
	}}
	return playlists, episodes
}

func TestDriveEngineUpdate(t *testing.T) {
	ctx := context.Background()
	sess := &services.Session{AccessToken: "access", ClientToken: "client"}

	t.Run("writes interleaved playlist", func(t *testing.T) {
		playlists, episodes := testSources()
		writer := &mockWriter{}
		recorder := &mockRecorder{}
		engine := newTestEngine(playlists, episodes, writer, recorder)

		progress := make(chan ProgressUpdate, 10)
		result, err := engine.Update(ctx, sess, testOpts(), progress)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		close(progress)

		if len(result.Tracks) != 12 {
			t.Errorf("expected 12 music tracks, got %d", len(result.Tracks))
		}
		if len(result.Episodes) != 2 {
			t.Fatalf("expected 2 episodes, got %d", len(result.Episodes))
		}
		if writer.playlistID != "target" || len(writer.uris) != 14 {
			t.Fatalf("unexpected write to %q with %d uris", writer.playlistID, len(writer.uris))
		}
		if writer.uris[0] != "spotify:episode:n1" || writer.uris[5] != "spotify:episode:s1" {
			t.Errorf("episodes not at positions 0 and 5: %v", writer.uris)
		}

		if len(recorder.runs) != 1 {
			t.Fatalf("expected one recorded run, got %d", len(recorder.runs))
		}
		run := recorder.runs[0]
		if run.SnapshotID != "snapshot-1" || run.TrackCount != 12 || run.EpisodeCount != 2 {
			t.Errorf("unexpected run %+v", run)
		}
		if !run.CreatedAt.Equal(fixedNow) {
			t.Errorf("expected run time %v, got %v", fixedNow, run.CreatedAt)
		}

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		want := []Phase{FetchSource, FetchEpisodes, FetchEpisodes, Arrange, WritePlaylist, RecordRun}
		if fmt.Sprint(phases) != fmt.Sprint(want) {
			t.Errorf("progress phases = %v, want %v", phases, want)
		}
	})

	t.Run("dry run does not write", func(t *testing.T) {
		playlists, episodes := testSources()
		writer := &mockWriter{}
		recorder := &mockRecorder{}
		engine := newTestEngine(playlists, episodes, writer, recorder)

		opts := testOpts()
		opts.DryRun = true
		opts.TargetPlaylistID = ""
		result, err := engine.Update(ctx, sess, opts, nil)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if len(result.URIs) != 14 {
			t.Errorf("expected 14 uris, got %d", len(result.URIs))
		}
		if writer.uris != nil || len(recorder.runs) != 0 || result.Run != nil {
			t.Error("expected dry run to leave target and history untouched")
		}
	})

	t.Run("truncates to replace limit", func(t *testing.T) {
		playlists := &mockPlaylists{playlist: playlistOf(numberedTracks(services.MaxReplaceItems + 20)...)}
		_, episodes := testSources()
		writer := &mockWriter{}
		engine := newTestEngine(playlists, episodes, writer, nil)

		opts := testOpts()
		opts.SkipLeading = 0
		result, err := engine.Update(ctx, sess, opts, nil)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if len(writer.uris) != services.MaxReplaceItems {
			t.Errorf("expected %d uris, got %d", services.MaxReplaceItems, len(writer.uris))
		}
		if result.Run.EpisodeCount != 2 || result.Run.TrackCount != services.MaxReplaceItems-2 {
			t.Errorf("unexpected counts %+v", result.Run)
		}
	})

	t.Run("recorder failure is not fatal", func(t *testing.T) {
		playlists, episodes := testSources()
		engine := newTestEngine(playlists, episodes, &mockWriter{}, &mockRecorder{err: errors.New("disk full")})
		if _, err := engine.Update(ctx, sess, testOpts(), nil); err != nil {
			t.Errorf("expected success despite recorder error, got %v", err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		apiErr := fmt.Errorf("%w: boom", shared.ErrAPIRequest)

		tc := []struct {
			name   string
			mutate func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts)
			want   error
		}{
			{
				name:   "missing source",
				mutate: func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts) { o.SourcePlaylistID = "" },
				want:   shared.ErrMissingArgument,
			},
			{
				name:   "missing target",
				mutate: func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts) { o.TargetPlaylistID = "" },
				want:   shared.ErrMissingArgument,
			},
			{
				name:   "playlist fetch",
				mutate: func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts) { p.err = apiErr },
				want:   shared.ErrAPIRequest,
			},
			{
				name:   "episode fetch",
				mutate: func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts) { e.err = apiErr },
				want:   shared.ErrAPIRequest,
			},
			{
				name:   "replace",
				mutate: func(p *mockPlaylists, e *mockEpisodes, w *mockWriter, o *DriveOpts) { w.err = apiErr },
				want:   shared.ErrAPIRequest,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				playlists, episodes := testSources()
				writer := &mockWriter{}
				opts := testOpts()
				tt.mutate(playlists, episodes, writer, &opts)

				engine := newTestEngine(playlists, episodes, writer, nil)
				if _, err := engine.Update(ctx, sess, opts, nil); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("uninitialized", func(t *testing.T) {
		engine := NewDriveEngine(nil, nil, nil, nil, shared.NewLogger(io.Discard))
		if _, err := engine.Update(ctx, sess, testOpts(), nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestDriveOptsFromConfig(t *testing.T) {
	cfg := shared.DriveConfig{
		SourcePlaylistID: "src",
		TargetPlaylistID: "dst",
		Shows:            []string{"a", "b"},
		SkipLeading:      1,
		LookbackDays:     2,
		EpisodesPerShow:  3,
		IncludePlayed:    true,
		Spacing:          4,
	}
	opts := DriveOptsFromConfig(cfg)
	if opts.SourcePlaylistID != "src" || opts.TargetPlaylistID != "dst" || len(opts.Shows) != 2 {
		t.Errorf("unexpected ids %+v", opts)
	}
	if opts.SkipLeading != 1 || opts.LookbackDays != 2 || opts.EpisodesPerShow != 3 || !opts.IncludePlayed || opts.Spacing != 4 {
		t.Errorf("unexpected selection %+v", opts)
	}
	if opts.DryRun {
		t.Error("config never enables dry run")
	}
}
