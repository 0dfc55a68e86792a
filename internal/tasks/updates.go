package tasks

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ResolvePlaylist Phase = iota
	FilterExisting
	AddTracks
	UnlikeTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case ResolvePlaylist:
		return "resolve_playlist"
	case FilterExisting:
		return "filter_existing"
	case AddTracks:
		return "add_tracks"
	case UnlikeTracks:
		return "unlike_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func resolvePlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    1,
		Total:   1,
		Message: "Resolving target playlist " + name,
	}
}

func addTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: "Adding tracks to playlist",
	}
}

func unlikeTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UnlikeTracks,
		Step:    step,
		Total:   total,
		Message: "Clearing liked flags",
	}
}

func doneUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: "Sweep complete",
	}
}
