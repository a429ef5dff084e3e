package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/services"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// PlaylistFetcher reads a full playlist through the partner API.
type PlaylistFetcher interface {
	Playlist(ctx context.Context, sess *services.Session, playlistID string) (*models.Playlist, error)
}

// EpisodeSource lists the newest episodes of a show.
type EpisodeSource interface {
	ShowEpisodes(ctx context.Context, showID string, limit int) ([]models.Episode, error)
}

// PlaylistWriter replaces every item of a playlist and returns the new snapshot id.
type PlaylistWriter interface {
	ReplacePlaylist(ctx context.Context, playlistID string, uris []string) (string, error)
}

// RunRecorder persists a completed run. Implemented by repositories.RunRepository.
type RunRecorder interface {
	Record(ctx context.Context, run *models.Run) error
}

// DriveOpts configures a single drive update.
type DriveOpts struct {
	SourcePlaylistID string
	TargetPlaylistID string
	Shows            []string
	SkipLeading      int
	LookbackDays     int
	EpisodesPerShow  int
	IncludePlayed    bool
	Spacing          int
	DryRun           bool
}

// DriveOptsFromConfig maps the [drive] config section onto [DriveOpts].
func DriveOptsFromConfig(cfg shared.DriveConfig) DriveOpts {
	return DriveOpts{
		SourcePlaylistID: cfg.SourcePlaylistID,
		TargetPlaylistID: cfg.TargetPlaylistID,
		Shows:            cfg.Shows,
		SkipLeading:      cfg.SkipLeading,
		LookbackDays:     cfg.LookbackDays,
		EpisodesPerShow:  cfg.EpisodesPerShow,
		IncludePlayed:    cfg.IncludePlayed,
		Spacing:          cfg.Spacing,
	}
}

// DriveResult contains everything a drive update produced.
type DriveResult struct {
	Source   *models.Playlist
	Tracks   []models.Track
	Episodes []models.Episode
	URIs     []string
	Run      *models.Run // nil on dry runs
}

// episodeFetchLimit is how many of a show's newest episodes are inspected.
const episodeFetchLimit = 20

// DriveEngine rebuilds the target playlist from the source playlist's music and fresh show episodes.
type DriveEngine struct {
	playlists PlaylistFetcher
	episodes  EpisodeSource
	writer    PlaylistWriter
	recorder  RunRecorder
	logger    *log.Logger
	now       func() time.Time
}

// NewDriveEngine creates a new DriveEngine. recorder may be nil to skip history.
func NewDriveEngine(playlists PlaylistFetcher, episodes EpisodeSource, writer PlaylistWriter, recorder RunRecorder, logger *log.Logger) *DriveEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DriveEngine{
		playlists: playlists,
		episodes:  episodes,
		writer:    writer,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *DriveEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Update fetches the source playlist and episodes, interleaves them, and writes the target playlist.
func (e *DriveEngine) Update(ctx context.Context, sess *services.Session, opts DriveOpts, progress chan<- ProgressUpdate) (*DriveResult, error) {
	if e.playlists == nil || e.episodes == nil {
		return nil, fmt.Errorf("%w: drive engine not initialized", shared.ErrServiceUnavailable)
	}
	if opts.SourcePlaylistID == "" {
		return nil, fmt.Errorf("%w: source playlist id", shared.ErrMissingArgument)
	}
	if opts.TargetPlaylistID == "" && !opts.DryRun {
		return nil, fmt.Errorf("%w: target playlist id", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchSourceUpdate(opts.SourcePlaylistID))
	source, err := e.playlists.Playlist(ctx, sess, opts.SourcePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}

	result := &DriveResult{Source: source}
	result.Tracks = MusicTracks(source, opts.SkipLeading)

	filter := EpisodeFilter{
		Now:           e.now(),
		LookbackDays:  opts.LookbackDays,
		IncludePlayed: opts.IncludePlayed,
		PerShow:       opts.EpisodesPerShow,
	}
	for i, showID := range opts.Shows {
		e.sendProgress(progress, fetchEpisodesUpdate(i+1, len(opts.Shows), showID))

		eps, err := e.episodes.ShowEpisodes(ctx, showID, episodeFetchLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch episodes for show %s: %w", showID, err)
		}
		recent := RecentEpisodes(eps, filter)
		e.logger.Debug("selected episodes", "show", showID, "available", len(eps), "selected", len(recent))
		result.Episodes = append(result.Episodes, recent...)
	}

	e.sendProgress(progress, arrangeUpdate(len(result.Tracks), len(result.Episodes)))
	result.URIs = Interleave(result.Tracks, result.Episodes, opts.Spacing)

	if len(result.URIs) > services.MaxReplaceItems {
		e.logger.Warn("truncating playlist to the replace limit", "items", len(result.URIs), "limit", services.MaxReplaceItems)
		result.URIs = result.URIs[:services.MaxReplaceItems]
	}

	if opts.DryRun {
		e.logger.Info("dry run, target playlist left untouched", "items", len(result.URIs))
		return result, nil
	}
	if e.writer == nil {
		return nil, fmt.Errorf("%w: playlist writer not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, writePlaylistUpdate(opts.TargetPlaylistID, len(result.URIs)))
	snapshot, err := e.writer.ReplacePlaylist(ctx, opts.TargetPlaylistID, result.URIs)
	if err != nil {
		return nil, fmt.Errorf("failed to replace target playlist: %w", err)
	}

	episodes := countEpisodes(result.URIs)
	result.Run = &models.Run{
		SourcePlaylistID: opts.SourcePlaylistID,
		TargetPlaylistID: opts.TargetPlaylistID,
		TrackCount:       len(result.URIs) - episodes,
		EpisodeCount:     episodes,
		SnapshotID:       snapshot,
		URIs:             result.URIs,
		CreatedAt:        e.now().UTC(),
	}

	if e.recorder != nil {
		e.sendProgress(progress, recordRunUpdate())
		if err := e.recorder.Record(ctx, result.Run); err != nil {
			e.logger.Error("failed to record run", "error", err)
		}
	}

	e.logger.Info("daily drive updated", "target", opts.TargetPlaylistID, "tracks", result.Run.TrackCount, "episodes", result.Run.EpisodeCount)
	return result, nil
}

func countEpisodes(uris []string) int {
	n := 0
	for _, uri := range uris {
		if strings.HasPrefix(uri, "spotify:episode:") {
			n++
		}
	}
	return n
}
