package tasks

import "fmt"

// ProgressUpdate represents a progress event during a drive update.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchEpisodes
	Arrange
	WritePlaylist
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchEpisodes:
		return "fetch_episodes"
	case Arrange:
		return "arrange"
	case WritePlaylist:
		return "write_playlist"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

func fetchSourceUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist %s...", id),
	}
}

func fetchEpisodesUpdate(step, total int, showID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEpisodes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching episodes for show %s...", showID),
	}
}

func arrangeUpdate(tracks, episodes int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Arrange,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Interleaving %d episodes into %d tracks", episodes, tracks),
	}
}

func writePlaylistUpdate(id string, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Replacing %d items in playlist %s...", items, id),
	}
}

func recordRunUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: "Recording run history...",
	}
}
