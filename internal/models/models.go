package models

import (
	"fmt"
	"time"
)

// ExternalURL is a public web link for an entity, derived from its resource URI.
type ExternalURL struct {
	URL string `json:"url"`
}

// Image is a single artwork source. Height and Width are nil when the source omits them.
type Image struct {
	URL    string `json:"url"`
	Height *int   `json:"height,omitempty"`
	Width  *int   `json:"width,omitempty"`
}

// Artist represents a performing artist.
type Artist struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URI          string        `json:"uri"`
	ExternalURLs []ExternalURL `json:"external_urls"`
}

// Album represents a release containing a track.
type Album struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URI          string        `json:"uri"`
	ExternalURLs []ExternalURL `json:"external_urls"`
	Artists      []Artist      `json:"artists"`
	Images       []Image       `json:"images"`
}

// ItemKind tags a playable item as either a music track or a podcast episode.
type ItemKind int

const (
	KindTrack ItemKind = iota
	KindEpisode
)

func (k ItemKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindEpisode:
		return "episode"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *ItemKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "track":
		*k = KindTrack
	case "episode":
		*k = KindEpisode
	default:
		return fmt.Errorf("unknown item kind %q", string(b))
	}
	return nil
}

// Track is a playable playlist item. Episodes carry no Album and no Artists.
type Track struct {
	Kind         ItemKind      `json:"kind"`
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URI          string        `json:"uri"`
	ExternalURLs []ExternalURL `json:"external_urls"`
	DurationMS   int           `json:"duration_ms"`
	Explicit     bool          `json:"explicit"`
	Album        *Album        `json:"album,omitempty"`
	Artists      []Artist      `json:"artists"`
}

// IsEpisode reports whether the track is a podcast episode.
func (t Track) IsEpisode() bool {
	return t.Kind == KindEpisode
}

// ArtistNames returns the names of the track's artists in API order.
func (t Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// Owner is the user owning a playlist.
type Owner struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URI          string        `json:"uri"`
	ExternalURLs []ExternalURL `json:"external_urls"`
}

// PlaylistTrack wraps a [Track] with its playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	AddedBy *Owner `json:"added_by,omitempty"` // not populated by the partner payload mapping
	IsLocal bool   `json:"is_local"`
	Track   Track  `json:"track"`
}

// Playlist is a playlist with all of its items in server order.
type Playlist struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	URI           string          `json:"uri"`
	ExternalURLs  []ExternalURL   `json:"external_urls"`
	Description   string          `json:"description"`
	Public        *bool           `json:"public,omitempty"`
	Collaborative *bool           `json:"collaborative,omitempty"`
	Followers     int             `json:"followers"`
	Images        []Image         `json:"images"`
	Owner         *Owner          `json:"owner,omitempty"`
	Tracks        []PlaylistTrack `json:"tracks"`
}

// URIs returns the URI of every playlist item in order.
func (p *Playlist) URIs() []string {
	uris := make([]string, 0, len(p.Tracks))
	for _, item := range p.Tracks {
		uris = append(uris, item.Track.URI)
	}
	return uris
}

// Profile holds the authenticated user's public profile attributes.
type Profile struct {
	Avatar                *string `json:"avatar,omitempty"`
	AvatarBackgroundColor *string `json:"avatar_background_color,omitempty"`
	Name                  string  `json:"name"`
	URI                   string  `json:"uri"`
	Username              string  `json:"username"`
}

// AccountAttributes holds plan and market details of the authenticated account.
type AccountAttributes struct {
	Catalogue                   string  `json:"catalogue"`
	DSAModeAvailable            bool    `json:"dsa_mode_available"`
	DSAModeEnabled              bool    `json:"dsa_mode_enabled"`
	MultiUserPlanCurrentSize    *int    `json:"multi_user_plan_current_size,omitempty"`
	MultiUserPlanMemberType     *string `json:"multi_user_plan_member_type,omitempty"`
	OnDemand                    bool    `json:"on_demand"`
	OptInTrialPremiumOnlyMarket bool    `json:"opt_in_trial_premium_only_market"`
	Country                     string  `json:"country"`
	Product                     string  `json:"product"`
}

// Category is a browse category.
type Category struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URI          string        `json:"uri"`
	ExternalURLs []ExternalURL `json:"external_urls"`
}

// Episode is a show episode as listed by the public Web API.
type Episode struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URI         string    `json:"uri"`
	ShowID      string    `json:"show_id"`
	ReleaseDate time.Time `json:"release_date"`
	DurationMS  int       `json:"duration_ms"`
	FullyPlayed bool      `json:"fully_played"`
}

// Run records a single write of a reordered playlist.
type Run struct {
	ID               string    `json:"id"`
	Sequence         int       `json:"sequence"`
	SourcePlaylistID string    `json:"source_playlist_id"`
	TargetPlaylistID string    `json:"target_playlist_id"`
	TrackCount       int       `json:"track_count"`
	EpisodeCount     int       `json:"episode_count"`
	SnapshotID       string    `json:"snapshot_id"`
	URIs             []string  `json:"uris"`
	CreatedAt        time.Time `json:"created_at"`
}
