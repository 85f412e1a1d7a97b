package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadPlaylist Phase = iota
	ResolveSongs
	ExportPlaylist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadPlaylist:
		return "load_playlist"
	case ResolveSongs:
		return "resolve_songs"
	case ExportPlaylist:
		return "export_playlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func loadPlaylistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading playlist %s...", step, total, id),
	}
}

func resolveStartUpdate(total, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSongs,
		Total:   total,
		Message: fmt.Sprintf("Caching %d remote songs (%d local skipped)...", total, skipped),
	}
}

func resolvedUpdate(step, total int, res SongResult) ProgressUpdate {
	var msg string
	switch {
	case res.Error != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Song.String(), res.Error)
	case res.AlreadyCached:
		msg = fmt.Sprintf("[%d/%d] = %s (cached)", step, total, res.Song.String())
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Song.String())
	}
	return ProgressUpdate{
		Phase:   ResolveSongs,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s...", path),
	}
}
