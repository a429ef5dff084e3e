package testing

import "fmt"

// JSON is a decoded JSON object fixture.
type JSON = map[string]any

// ArtistJSON builds an artist payload.
func ArtistJSON(id, name string) JSON {
	return JSON{"uri": "spotify:artist:" + id, "profile": JSON{"name": name}}
}

// AlbumJSON builds an albumOfTrack payload with a single cover art source.
func AlbumJSON(id, name string, artists ...JSON) JSON {
	items := make([]any, 0, len(artists))
	for _, a := range artists {
		items = append(items, a)
	}
	return JSON{
		"uri":     "spotify:album:" + id,
		"name":    name,
		"artists": JSON{"items": items},
		"coverArt": JSON{"sources": []any{
			JSON{"url": "https://i.scdn.co/image/" + id, "height": 640, "width": 640},
			JSON{"url": "https://i.scdn.co/image/" + id + "-small", "height": 64, "width": 64},
		}},
	}
}

// TrackJSON builds a music track payload with one artist and an album.
func TrackJSON(id, name string, durationMS int) JSON {
	artist := ArtistJSON("ar-"+id, "Artist "+id)
	return JSON{
		"uri":           "spotify:track:" + id,
		"name":          name,
		"explicit":      false,
		"trackDuration": JSON{"totalMilliseconds": durationMS},
		"albumOfTrack":  AlbumJSON("al-"+id, "Album "+id, artist),
		"artists":       JSON{"items": []any{artist}},
	}
}

// EpisodeJSON builds a podcast episode payload: no artists and no album.
func EpisodeJSON(id, name string, durationMS int) JSON {
	return JSON{
		"uri":             "spotify:episode:" + id,
		"name":            name,
		"episodeDuration": JSON{"totalMilliseconds": durationMS},
	}
}

// PlaylistItem wraps a track payload the way content.items entries do.
func PlaylistItem(data JSON, addedAt string) JSON {
	item := JSON{"itemV2": JSON{"data": data}}
	if addedAt != "" {
		item["addedAt"] = JSON{"isoString": addedAt}
	}
	return item
}

// PlaylistResponse builds a fetchPlaylist response holding items and totalCount.
func PlaylistResponse(id, name string, total int, items ...JSON) JSON {
	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	return JSON{"data": JSON{"playlistV2": JSON{
		"uri":         "spotify:playlist:" + id,
		"name":        name,
		"description": "Music and news for the commute",
		"followers":   12,
		"images": JSON{"items": []any{
			JSON{"sources": []any{JSON{"url": "https://mosaic.scdn.co/640/" + id, "height": nil, "width": nil}}},
		}},
		"ownerV2": JSON{"data": JSON{"uri": "spotify:user:spotify", "name": "Spotify"}},
		"content": JSON{"items": list, "totalCount": total},
	}}}
}

// NumberedTracks builds n music track items with ids prefix-0..prefix-(n-1).
func NumberedTracks(prefix string, start, n int) []JSON {
	items := make([]JSON, 0, n)
	for i := start; i < start+n; i++ {
		id := fmt.Sprintf("%s%d", prefix, i)
		items = append(items, PlaylistItem(TrackJSON(id, "Song "+id, 180_000), "2024-12-01T08:00:00Z"))
	}
	return items
}
