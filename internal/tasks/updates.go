package tasks

import (
	"fmt"
	"strings"
)

// ProgressUpdate represents a progress event during a reconciliation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Reconciliation phase enumeration
type Phase int

const (
	ResetTarget Phase = iota
	ValidateSources
	GatherTracks
	Deduplicate
	Shuffle
	AddTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case ResetTarget:
		return "reset_target"
	case ValidateSources:
		return "validate_sources"
	case GatherTracks:
		return "gather_tracks"
	case Deduplicate:
		return "deduplicate"
	case Shuffle:
		return "shuffle"
	case AddTracks:
		return "add_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func resetTargetUpdate(title string, matches int) ProgressUpdate {
	var action string
	switch matches {
	case 0:
		action = "creating"
	case 1:
		action = "clearing"
	default:
		action = fmt.Sprintf("replacing %d copies of", matches)
	}
	return ProgressUpdate{
		Phase:   ResetTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resetting target: %s %q...", action, title),
	}
}

func targetReadyUpdate(title string, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResetTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Target ready: %s (ID: %d)", title, id),
		Data:    id,
	}
}

func validateSourcesUpdate(sources []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateSources,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking source playlists: %s", strings.Join(sources, ", ")),
	}
}

func gatherTracksUpdate(step, total int, source string, playlists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GatherTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s (%d playlists)...", step, total, source, playlists),
	}
}

func deduplicateUpdate(found, duplicates int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Deduplicate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d tracks, %d duplicates", found, duplicates),
	}
}

func shuffleUpdate(count, limit int) ProgressUpdate {
	msg := fmt.Sprintf("Shuffling %d tracks", count)
	if limit > 0 && count > limit {
		msg += fmt.Sprintf(", keeping %d", limit)
	}
	return ProgressUpdate{
		Phase:   Shuffle,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func addTracksUpdate(count int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, title),
	}
}

func doneUpdate(result *ShuffleResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ %s: %d tracks", result.Title, result.Added),
		Data:    result,
	}
}
