package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// MaxReplaceItems is the most URIs one playlist replace call accepts.
const MaxReplaceItems = 100

// WebAPIService reads show episodes and rewrites playlists through the public Web API.
type WebAPIService struct {
	client *spotify.Client
	logger *log.Logger
}

// NewWebAPIService wraps an authorized client. Extra options (e.g. [spotify.WithBaseURL]) are passed through.
func NewWebAPIService(httpClient *http.Client, logger *log.Logger, opts ...spotify.ClientOption) *WebAPIService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &WebAPIService{client: spotify.New(httpClient, opts...), logger: logger}
}

// ShowEpisodes lists the newest episodes of a show, most recent first.
func (s *WebAPIService) ShowEpisodes(ctx context.Context, showID string, limit int) ([]models.Episode, error) {
	if showID == "" {
		return nil, fmt.Errorf("%w: show id", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		limit = 20
	}

	page, err := s.client.GetShowEpisodes(ctx, showID, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: show %s episodes: %v", shared.ErrAPIRequest, showID, err)
	}

	episodes := make([]models.Episode, 0, len(page.Episodes))
	for _, ep := range page.Episodes {
		released, err := ParseReleaseDate(ep.ReleaseDate, ep.ReleaseDatePrecision)
		if err != nil {
			s.logger.Warn("skipping episode with unreadable release date", "episode", ep.ID, "release_date", ep.ReleaseDate, "error", err)
			continue
		}
		episodes = append(episodes, models.Episode{
			ID:          string(ep.ID),
			Name:        ep.Name,
			URI:         string(ep.URI),
			ShowID:      showID,
			ReleaseDate: released,
			DurationMS:  int(ep.Duration_ms),
			FullyPlayed: ep.ResumePoint.FullyPlayed,
		})
	}

	s.logger.Debug("listed show episodes", "show", showID, "count", len(episodes))
	return episodes, nil
}

// ReplacePlaylist overwrites the playlist with uris and returns the new snapshot id.
func (s *WebAPIService) ReplacePlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(uris) > MaxReplaceItems {
		return "", fmt.Errorf("%w: %d items exceeds the replace limit of %d", shared.ErrInvalidArgument, len(uris), MaxReplaceItems)
	}

	items := make([]spotify.URI, 0, len(uris))
	for _, uri := range uris {
		items = append(items, spotify.URI(uri))
	}

	snapshot, err := s.client.ReplacePlaylistItems(ctx, spotify.ID(playlistID), items...)
	if err != nil {
		return "", fmt.Errorf("%w: replace playlist %s: %v", shared.ErrAPIRequest, playlistID, err)
	}

	s.logger.Info("replaced playlist items", "playlist", playlistID, "items", len(uris), "snapshot", snapshot)
	return snapshot, nil
}

// CurrentUser returns the id of the authorized user.
func (s *WebAPIService) CurrentUser(ctx context.Context) (string, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}
	return user.ID, nil
}

// ParseReleaseDate reads a release date at day, month or year precision.
func ParseReleaseDate(date, precision string) (time.Time, error) {
	layout := "2006-01-02"
	switch precision {
	case "month":
		layout = "2006-01"
	case "year":
		layout = "2006"
	}
	return time.Parse(layout, date)
}
