package tasks

import (
	"fmt"

	"github.com/AliEhsanian/ytgrab/internal/engine"
	"github.com/AliEhsanian/ytgrab/internal/models"
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
	Resolve Phase = iota
	FetchPlaylist
	Download
	Convert
	Record
)

func (p Phase) String() string {
	switch p {
	case Resolve:
		return "resolve"
	case FetchPlaylist:
		return "fetch_playlist"
	case Download:
		return "download"
	case Convert:
		return "convert"
	case Record:
		return "record"
	default:
		return ""
	}
}

func resolvingUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %s...", url),
	}
}

func fetchingPlaylistUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", playlistID),
	}
}

func playlistFoundUpdate(playlistID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist %s: %d items", playlistID, count),
	}
}

func downloadingUpdate(ev models.ProgressEvent) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    int(ev.Percent),
		Total:   100,
		Message: fmt.Sprintf("Downloading... %.1f%%", ev.Percent),
		Data:    ev,
	}
}

func playlistItemUpdate(step, total int, item engine.PlaylistItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, item.Title),
	}
}

func playlistItemFailedUpdate(step, total int, item engine.PlaylistItem, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item.Title, err),
	}
}

func convertingUpdate(percent float64, targetExt string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Convert,
		Step:    int(percent),
		Total:   100,
		Message: fmt.Sprintf("Converting to %s... %.1f%%", targetExt, percent),
	}
}

func recordedUpdate(outputPath string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Record,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved %s", outputPath),
	}
}
