package tasks

import (
	"fmt"

	"tunesync/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchRemote Phase = iota
	FetchLocal
	ScanLibrary
	Compare
	Resolve
	ApplyAdds
	ApplyRemovals
)

func (p Phase) String() string {
	switch p {
	case FetchRemote:
		return "fetch_remote"
	case FetchLocal:
		return "fetch_local"
	case ScanLibrary:
		return "scan_library"
	case Compare:
		return "compare"
	case Resolve:
		return "resolve"
	case ApplyAdds:
		return "apply_adds"
	case ApplyRemovals:
		return "apply_removals"
	default:
		return ""
	}
}

func fetchRemoteUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRemote,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching source playlist (%s)...", name),
	}
}

func fetchLocalUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLocal,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Enumerating local playlist (%s)...", name),
	}
}

func foundPlaylistUpdate(step, total int, snap *services.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRemote,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", snap.Playlist.Name, len(snap.Tracks)),
		Data:    snap,
	}
}

func scanLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanLibrary,
		Step:    step,
		Total:   total,
		Message: "Scanning local library...",
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing playlist snapshots...",
	}
}

func resolveUpdate(step, total, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d diff entries against the library...", entries),
	}
}

func applyAddUpdate(step, total int, tr services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyAdds,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding: %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func applyRemoveUpdate(step, total int, tr services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyRemovals,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removing: %s", step, total, tr.Title),
	}
}
