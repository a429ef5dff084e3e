package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/pathfinder"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// PartnerOptions configures a [PartnerService].
type PartnerOptions struct {
	PageLimit int
	MaxPages  int
	Logger    *log.Logger
}

// PartnerService assembles domain entities from partner API queries.
//
// It holds no session state: credentials are passed to each call.
type PartnerService struct {
	transport Transport
	pager     pathfinder.Pager
	logger    *log.Logger
}

// NewPartnerService creates a service sending requests through t.
func NewPartnerService(t Transport, opts PartnerOptions) *PartnerService {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &PartnerService{
		transport: t,
		pager:     pathfinder.Pager{Limit: opts.PageLimit, MaxPages: opts.MaxPages},
		logger:    opts.Logger,
	}
}

func (s *PartnerService) query(ctx context.Context, sess *Session, op pathfinder.Operation, vars pathfinder.Vars) (pathfinder.Object, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	rawQuery, err := op.Encode(vars)
	if err != nil {
		return nil, err
	}
	return s.transport.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     pathfinder.QueryPath,
		RawQuery: rawQuery,
		Header:   sess.Headers(),
		Cookies:  sess.Cookies,
	})
}

// Playlist fetches every page of a playlist and assembles it. Any failure aborts the fetch.
func (s *PartnerService) Playlist(ctx context.Context, sess *Session, playlistID string) (*models.Playlist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	logger := shared.WithLogger(s.logger, "operation", pathfinder.FetchPlaylist.Name, "playlist", playlistID)
	page, err := s.pager.Collect(ctx, func(ctx context.Context, offset, limit int) (pathfinder.Page, error) {
		logger.Debug("fetching page", "offset", offset, "limit", limit)
		resp, err := s.query(ctx, sess, pathfinder.FetchPlaylist, pathfinder.PlaylistVars(playlistID, offset, limit))
		if err != nil {
			return pathfinder.Page{}, err
		}
		return pathfinder.PlaylistPage(resp)
	})
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	playlist, err := pathfinder.BuildPlaylist(playlistID, page.Header, page.Items)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	logger.Info("fetched playlist", "name", playlist.Name, "items", len(playlist.Tracks))
	return playlist, nil
}

// Profile returns the authenticated user's profile, or nil after logging any failure.
func (s *PartnerService) Profile(ctx context.Context, sess *Session) *models.Profile {
	resp, err := s.query(ctx, sess, pathfinder.ProfileAttributes, pathfinder.Vars{})
	if err != nil {
		s.logger.Error("failed to fetch profile attributes", "operation", pathfinder.ProfileAttributes.Name, "error", err)
		return nil
	}

	profile, err := pathfinder.ParseProfile(pathfinder.MeBlock(resp, "profile"))
	if err != nil {
		s.logger.Error("failed to fetch profile attributes", "operation", pathfinder.ProfileAttributes.Name, "error", err)
		return nil
	}
	return profile
}

// AccountAttributes returns the account plan details, or nil after logging any failure.
func (s *PartnerService) AccountAttributes(ctx context.Context, sess *Session) *models.AccountAttributes {
	resp, err := s.query(ctx, sess, pathfinder.AccountAttributes, pathfinder.Vars{})
	if err != nil {
		s.logger.Error("failed to fetch account attributes", "operation", pathfinder.AccountAttributes.Name, "error", err)
		return nil
	}

	attrs, err := pathfinder.ParseAccountAttributes(pathfinder.MeBlock(resp, "account"))
	if err != nil {
		s.logger.Error("failed to fetch account attributes", "operation", pathfinder.AccountAttributes.Name, "error", err)
		return nil
	}
	return attrs
}

// SearchTracks is not supported by the partner operations in use.
func (s *PartnerService) SearchTracks(ctx context.Context, sess *Session, query string, limit int) ([]models.Track, error) {
	return nil, fmt.Errorf("%w: search tracks", shared.ErrNotImplemented)
}

// FeaturedPlaylists is not supported by the partner operations in use.
func (s *PartnerService) FeaturedPlaylists(ctx context.Context, sess *Session, limit int) ([]models.Playlist, error) {
	return nil, fmt.Errorf("%w: featured playlists", shared.ErrNotImplemented)
}

// PlaylistsByCategory is not supported by the partner operations in use.
func (s *PartnerService) PlaylistsByCategory(ctx context.Context, sess *Session, categoryID string, limit int) ([]models.Playlist, error) {
	return nil, fmt.Errorf("%w: playlists by category", shared.ErrNotImplemented)
}

// Categories is not supported by the partner operations in use.
func (s *PartnerService) Categories(ctx context.Context, sess *Session, limit int) ([]models.Category, error) {
	return nil, fmt.Errorf("%w: categories", shared.ErrNotImplemented)
}
