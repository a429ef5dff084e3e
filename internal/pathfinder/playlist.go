package pathfinder

import (
	"fmt"

	"github.com/desertthunder/dailydrive/internal/models"
	"github.com/desertthunder/dailydrive/internal/shared"
)

// PlaylistPage reads data.playlistV2 and its content block from one fetchPlaylist response.
//
// A playlistV2 of type NotFound fails with [shared.ErrPlaylistNotFound].
func PlaylistPage(resp Object) (Page, error) {
	header := optObject(resp, "data.playlistV2")
	if header == nil {
		return Page{}, fmt.Errorf("%w: missing data.playlistV2", shared.ErrMalformedResponse)
	}
	if optString(header, "__typename") == "NotFound" {
		return Page{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, optString(header, "message"))
	}

	page := Page{Header: header, Items: optList(header, "content.items")}
	if v, ok := lookup(header, "content.totalCount"); ok {
		page.Total, page.HasTotal = toInt(v)
	}
	return page, nil
}

// BuildPlaylist assembles a playlist from its header object and accumulated raw items.
//
// Track extraction failures abort the whole playlist.
func BuildPlaylist(playlistID string, header Object, items []any) (*models.Playlist, error) {
	tracks := make([]models.PlaylistTrack, 0, len(items))
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: %w", i, missing("content.items"))
		}
		data, err := requireObject(item, "itemV2.data")
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		track, err := ParseTrack(data)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		tracks = append(tracks, models.PlaylistTrack{
			AddedAt: optString(item, "addedAt.isoString"),
			IsLocal: false,
			Track:   track,
		})
	}

	return &models.Playlist{
		ID:            playlistID,
		Name:          optString(header, "name"),
		URI:           optString(header, "uri"),
		ExternalURLs:  ExternalURLs(playlistID, "playlist"),
		Description:   optString(header, "description"),
		Public:        optBoolPtr(header, "public"),
		Collaborative: optBoolPtr(header, "collaborative"),
		Followers:     optInt(header, "followers"),
		Images:        ParseImages(objects(optList(header, "images.items"))),
		Owner:         ParseOwner(optObject(header, "ownerV2.data")),
		Tracks:        tracks,
	}, nil
}

// MeBlock returns data.me.<key>, or nil when absent.
func MeBlock(resp Object, key string) Object {
	return optObject(resp, "data.me."+key)
}
