package pathfinder

import (
	"fmt"
	"strings"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// WebBaseURL is the public web player host used for external links.
const WebBaseURL = "https://open.spotify.com"

// IDFromURI returns the final colon-delimited segment of uri.
func IDFromURI(uri string) string {
	return uri[strings.LastIndex(uri, ":")+1:]
}

// ExternalURLs derives the public link for an entity of entityType from its URI.
func ExternalURLs(uri, entityType string) []models.ExternalURL {
	return []models.ExternalURL{{URL: fmt.Sprintf("%s/%s/%s", WebBaseURL, entityType, IDFromURI(uri))}}
}

// ParseImages keeps the first source of each descriptor, skipping descriptors without sources.
func ParseImages(descriptors []Object) []models.Image {
	images := make([]models.Image, 0, len(descriptors))
	for _, d := range descriptors {
		sources := objects(optList(d, "sources"))
		if len(sources) == 0 {
			continue
		}
		src := sources[0]
		images = append(images, models.Image{
			URL:    optString(src, "url"),
			Height: optIntPtr(src, "height"),
			Width:  optIntPtr(src, "width"),
		})
	}
	return images
}

// ParseArtist requires uri and profile.name.
func ParseArtist(data Object) (models.Artist, error) {
	uri, err := requireString(data, "uri")
	if err != nil {
		return models.Artist{}, fmt.Errorf("artist: %w", err)
	}
	name, err := requireString(data, "profile.name")
	if err != nil {
		return models.Artist{}, fmt.Errorf("artist %s: %w", uri, err)
	}

	return models.Artist{
		ID:           IDFromURI(uri),
		Name:         name,
		URI:          uri,
		ExternalURLs: ExternalURLs(uri, "artist"),
	}, nil
}

func parseArtists(data Object, path string) ([]models.Artist, error) {
	items, err := requireList(data, path)
	if err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, missing(fmt.Sprintf("%s[%d]", path, i))
		}
		artist, err := ParseArtist(obj)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, nil
}

// ParseAlbum requires uri, name, artists.items and coverArt.sources.
//
// The coverArt object is read as a single image descriptor, so an album carries at most one
// image (the first source). Treating each entry of coverArt.sources as its own descriptor
// would yield nothing, since sources hold url/width/height directly.
func ParseAlbum(data Object) (*models.Album, error) {
	uri, err := requireString(data, "uri")
	if err != nil {
		return nil, fmt.Errorf("album: %w", err)
	}
	name, err := requireString(data, "name")
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", uri, err)
	}
	artists, err := parseArtists(data, "artists.items")
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", uri, err)
	}
	if _, err := requireList(data, "coverArt.sources"); err != nil {
		return nil, fmt.Errorf("album %s: %w", uri, err)
	}

	return &models.Album{
		ID:           IDFromURI(uri),
		Name:         name,
		URI:          uri,
		ExternalURLs: ExternalURLs(uri, "album"),
		Artists:      artists,
		Images:       ParseImages([]Object{optObject(data, "coverArt")}),
	}, nil
}

// ParseTrack builds a music track or a podcast episode.
//
// The kind is decided by which duration key is present. Episodes never carry an album.
func ParseTrack(data Object) (models.Track, error) {
	uri, err := requireString(data, "uri")
	if err != nil {
		return models.Track{}, fmt.Errorf("track: %w", err)
	}
	name, err := requireString(data, "name")
	if err != nil {
		return models.Track{}, fmt.Errorf("track %s: %w", uri, err)
	}

	track := models.Track{
		ID:           IDFromURI(uri),
		Name:         name,
		URI:          uri,
		ExternalURLs: ExternalURLs(uri, "track"),
		Explicit:     optBool(data, "explicit"),
		Artists:      []models.Artist{},
	}

	if _, ok := lookup(data, "trackDuration"); ok {
		track.Kind = models.KindTrack
		track.DurationMS, err = requireInt(data, "trackDuration.totalMilliseconds")
	} else {
		track.Kind = models.KindEpisode
		track.DurationMS, err = requireInt(data, "episodeDuration.totalMilliseconds")
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("track %s: %w", uri, err)
	}
	if track.DurationMS < 0 {
		return models.Track{}, fmt.Errorf("track %s: %w: negative duration %d", uri, shared.ErrMalformedResponse, track.DurationMS)
	}

	if album := optObject(data, "albumOfTrack"); album != nil && track.Kind == models.KindTrack {
		if track.Album, err = ParseAlbum(album); err != nil {
			return models.Track{}, fmt.Errorf("track %s: %w", uri, err)
		}
	}

	if _, ok := lookup(data, "artists"); ok {
		if track.Artists, err = parseArtists(data, "artists.items"); err != nil {
			return models.Track{}, fmt.Errorf("track %s: %w", uri, err)
		}
	}

	return track, nil
}

// ParseOwner returns nil for an empty owner block. Every field is optional.
func ParseOwner(data Object) *models.Owner {
	if len(data) == 0 {
		return nil
	}
	uri := optString(data, "uri")
	return &models.Owner{
		ID:           IDFromURI(uri),
		Name:         optString(data, "name"),
		URI:          uri,
		ExternalURLs: ExternalURLs(uri, "user"),
	}
}

// ParseProfile maps data.me.profile. An empty block is a malformed response.
func ParseProfile(data Object) (*models.Profile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty profile", shared.ErrMalformedResponse)
	}
	return &models.Profile{
		Avatar:                optText(data, "avatar"),
		AvatarBackgroundColor: optText(data, "avatarBackgroundColor"),
		Name:                  optString(data, "name"),
		URI:                   optString(data, "uri"),
		Username:              optString(data, "username"),
	}, nil
}

// ParseAccountAttributes maps data.me.account. It requires a non-empty attributes block, country and product.
func ParseAccountAttributes(data Object) (*models.AccountAttributes, error) {
	attrs := optObject(data, "attributes")
	country := optString(data, "country")
	product := optString(data, "product")
	if len(attrs) == 0 || country == "" || product == "" {
		return nil, fmt.Errorf("%w: account requires attributes, country and product", shared.ErrMalformedResponse)
	}

	var memberType *string
	if v, ok := lookup(attrs, "multiUserPlanMemberType"); ok {
		if s, ok := v.(string); ok {
			memberType = &s
		}
	}

	return &models.AccountAttributes{
		Catalogue:                   optString(attrs, "catalogue"),
		DSAModeAvailable:            optBool(attrs, "dsaModeAvailable"),
		DSAModeEnabled:              optBool(attrs, "dsaModeEnabled"),
		MultiUserPlanCurrentSize:    optIntPtr(attrs, "multiUserPlanCurrentSize"),
		MultiUserPlanMemberType:     memberType,
		OnDemand:                    optBool(attrs, "onDemand"),
		OptInTrialPremiumOnlyMarket: optBool(attrs, "optInTrialPremiumOnlyMarket"),
		Country:                     country,
		Product:                     product,
	}, nil
}
