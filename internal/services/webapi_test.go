package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const showEpisodesJSON = `{
  "href": "https://api.spotify.com/v1/shows/show1/episodes?offset=0&limit=5",
  "limit": 5, "offset": 0, "total": 3, "next": null, "previous": null,
  "items": [
    {"id": "ep1", "name": "Today", "uri": "spotify:episode:ep1", "duration_ms": 900000,
     "release_date": "2025-03-02", "release_date_precision": "day", "type": "episode",
     "resume_point": {"fully_played": false, "resume_position_ms": 0}},
    {"id": "ep2", "name": "Yesterday", "uri": "spotify:episode:ep2", "duration_ms": 600000,
     "release_date": "2025-03-01", "release_date_precision": "day", "type": "episode",
     "resume_point": {"fully_played": true, "resume_position_ms": 600000}},
    {"id": "ep3", "name": "Broken", "uri": "spotify:episode:ep3", "duration_ms": 1000,
     "release_date": "soon", "release_date_precision": "day", "type": "episode",
     "resume_point": {"fully_played": false, "resume_position_ms": 0}}
  ]
}`

func newWebAPITestServer(t *testing.T, handler http.HandlerFunc) *WebAPIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWebAPIService(server.Client(), shared.NewLogger(io.Discard), spotify.WithBaseURL(server.URL+"/"))
}

func TestWebAPIService(t *testing.T) {
	t.Run("ShowEpisodes", func(t *testing.T) {
		svc := newWebAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/shows/show1/episodes" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "5" {
				t.Errorf("expected limit 5, got %s", r.URL.Query().Get("limit"))
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, showEpisodesJSON)
		})

		episodes, err := svc.ShowEpisodes(context.Background(), "show1", 5)
		if err != nil {
			t.Fatalf("ShowEpisodes() error = %v", err)
		}
		if len(episodes) != 2 {
			t.Fatalf("expected the unreadable episode to be skipped, got %d episodes", len(episodes))
		}

		first := episodes[0]
		if first.ID != "ep1" || first.URI != "spotify:episode:ep1" || first.ShowID != "show1" {
			t.Errorf("unexpected episode %+v", first)
		}
		if !first.ReleaseDate.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected release date %v", first.ReleaseDate)
		}
		if first.FullyPlayed || !episodes[1].FullyPlayed {
			t.Error("expected resume points to map to FullyPlayed")
		}
		if first.DurationMS != 900000 {
			t.Errorf("expected 900000ms, got %d", first.DurationMS)
		}
	})

	t.Run("ShowEpisodes Error", func(t *testing.T) {
		svc := newWebAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error": {"status": 404, "message": "Non existing id"}}`)
		})
		if _, err := svc.ShowEpisodes(context.Background(), "missing", 5); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if _, err := svc.ShowEpisodes(context.Background(), "", 5); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("ReplacePlaylist", func(t *testing.T) {
		var got struct {
			URIs []string `json:"uris"`
		}
		svc := newWebAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/playlists/target/tracks" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("invalid body: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"snapshot_id": "snap-1"}`)
		})

		uris := []string{"spotify:episode:e1", "spotify:track:t1"}
		snapshot, err := svc.ReplacePlaylist(context.Background(), "target", uris)
		if err != nil {
			t.Fatalf("ReplacePlaylist() error = %v", err)
		}
		if snapshot != "snap-1" {
			t.Errorf("expected snapshot snap-1, got %s", snapshot)
		}
		if strings.Join(got.URIs, ",") != strings.Join(uris, ",") {
			t.Errorf("expected uris in order, got %v", got.URIs)
		}
	})

	t.Run("ReplacePlaylist Limit", func(t *testing.T) {
		svc := NewWebAPIService(http.DefaultClient, shared.NewLogger(io.Discard))
		uris := make([]string, MaxReplaceItems+1)
		if _, err := svc.ReplacePlaylist(context.Background(), "target", uris); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := svc.ReplacePlaylist(context.Background(), "", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		svc := newWebAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id": "listener", "display_name": "Listener"}`)
		})
		id, err := svc.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if id != "listener" {
			t.Errorf("expected listener, got %s", id)
		}
	})
}

func TestParseReleaseDate(t *testing.T) {
	tc := []struct {
		date, precision string
		want            time.Time
	}{
		{date: "2025-03-02", precision: "day", want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{date: "2025-03", precision: "month", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{date: "2025", precision: "year", want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{date: "2025-03-02", precision: "", want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tc {
		t.Run(tt.date+"/"+tt.precision, func(t *testing.T) {
			got, err := ParseReleaseDate(tt.date, tt.precision)
			if err != nil {
				t.Fatalf("ParseReleaseDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseReleaseDate() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseReleaseDate("2025-03", "day"); err == nil {
		t.Error("expected an error for a date shorter than its precision")
	}
}
