package tasks

import (
	"strings"
	"time"

	"github.com/desertthunder/dailydrive/internal/models"
)

// DefaultSpacing is the number of extra music tracks added between consecutive episodes.
const DefaultSpacing = 4

// MusicTracks drops the first skipLeading items and keeps the music tracks with at least one artist.
func MusicTracks(playlist *models.Playlist, skipLeading int) []models.Track {
	if playlist == nil {
		return nil
	}
	items := playlist.Tracks
	if skipLeading > 0 {
		if skipLeading >= len(items) {
			return []models.Track{}
		}
		items = items[skipLeading:]
	}

	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		t := item.Track
		if t.Kind != models.KindTrack || len(t.Artists) == 0 || !strings.HasPrefix(t.URI, "spotify:track:") {
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// EpisodeFilter selects which show episodes are fresh enough to play.
type EpisodeFilter struct {
	Now           time.Time
	LookbackDays  int
	IncludePlayed bool
	PerShow       int // 0 keeps every match
}

// Cutoff is the earliest release day accepted, midnight UTC of Now's calendar day minus LookbackDays.
func (f EpisodeFilter) Cutoff() time.Time {
	y, m, d := f.Now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -f.LookbackDays)
}

// RecentEpisodes keeps episodes released on or after the cutoff, in input order.
func RecentEpisodes(episodes []models.Episode, f EpisodeFilter) []models.Episode {
	cutoff := f.Cutoff()
	recent := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.ReleaseDate.Before(cutoff) {
			continue
		}
		if ep.FullyPlayed && !f.IncludePlayed {
			continue
		}
		recent = append(recent, ep)
		if f.PerShow > 0 && len(recent) == f.PerShow {
			break
		}
	}
	return recent
}

// Interleave returns the URIs of tracks with episodes inserted at positions 0, spacing+1, 2*spacing+3, ...
//
// The gap after episode i is i+1+spacing, so episodes drift further apart as the list grows.
// An episode whose position is past the end of the list is appended.
func Interleave(tracks []models.Track, episodes []models.Episode, spacing int) []string {
	if spacing < 0 {
		spacing = 0
	}

	uris := make([]string, 0, len(tracks)+len(episodes))
	for _, t := range tracks {
		uris = append(uris, t.URI)
	}

	pos := 0
	for i, ep := range episodes {
		at := min(len(uris), pos)
		uris = append(uris, "")
		copy(uris[at+1:], uris[at:])
		uris[at] = ep.URI
		pos += (i + 1) + spacing
	}
	return uris
}
