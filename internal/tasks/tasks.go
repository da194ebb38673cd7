// package tasks implements playlist reconciliation against the user's Deezer library.
//
// The core abstraction is Reconciler, which rebuilds a target playlist from the union of source playlists.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/services"
	"github.com/desertthunder/dzshuffled/internal/shared"
)

// DescriptionLayout formats the reset timestamp written to the target description.
const DescriptionLayout = "15:04 02.01.2006"

// ShuffleResult summarizes a reconciliation.
type ShuffleResult struct {
	PlaylistID int64    `json:"playlist_id"` // Target playlist
	Title      string   `json:"title"`       // Target title
	Created    bool     `json:"created"`     // Target was created rather than cleared
	Removed    int      `json:"removed"`     // Playlists deleted because they shared the target title
	Sources    []string `json:"sources"`     // Source titles in scenario order
	Found      int      `json:"found"`       // Tracks gathered, duplicates included
	Duplicates int      `json:"duplicates"`  // Tracks dropped as duplicates
	Added      int      `json:"added"`       // Tracks written to the target
}

// Reconciler defines playlist reconciliation operations.
type Reconciler interface {
	// MakeShuffledPlaylist resets the target titled title and fills it with the shuffled, deduplicated union of
	// sources, keeping at most limit tracks when limit > 0.
	MakeShuffledPlaylist(ctx context.Context, progress chan<- ProgressUpdate, title string, sources []string, limit int) (*ShuffleResult, error)
}

// PlaylistEngine implements Reconciler over a [services.Library].
type PlaylistEngine struct {
	library services.Library
	rand    *rand.Rand
	now     func() time.Time
	logger  *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with a randomly seeded shuffle and the wall clock.
func NewPlaylistEngine(library services.Library, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &PlaylistEngine{
		library: library,
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
		logger:  logger,
	}
}

// WithRand replaces the shuffle source.
func (e *PlaylistEngine) WithRand(r *rand.Rand) *PlaylistEngine {
	e.rand = r
	return e
}

// WithClock replaces the clock used for the reset description.
func (e *PlaylistEngine) WithClock(now func() time.Time) *PlaylistEngine {
	e.now = now
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// MakeShuffledPlaylist reconciles the target playlist against its sources.
//
// The target is reset before sources are validated, so a missing source leaves an empty target behind.
// No source tracks are fetched unless every source title resolves.
func (e *PlaylistEngine) MakeShuffledPlaylist(ctx context.Context, progress chan<- ProgressUpdate, title string, sources []string, limit int) (*ShuffleResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: Deezer library not initialized", shared.ErrServiceUnavailable)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: target title", shared.ErrMissingArgument)
	}

	result := &ShuffleResult{Title: title, Sources: sources}

	targetID, created, removed, err := e.resetTarget(ctx, progress, title)
	if err != nil {
		return nil, err
	}
	result.PlaylistID = targetID
	result.Created = created
	result.Removed = removed

	e.sendProgress(progress, validateSourcesUpdate(sources))
	playlists, err := e.library.MyPlaylists(ctx, created || removed > 0)
	if err != nil {
		return result, err
	}
	if missing := MissingTitles(playlists, sources); len(missing) > 0 {
		return result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, quoteAll(missing))
	}

	var ids []int64
	for i, source := range sources {
		matches := models.FilterByTitle(playlists, source)
		e.sendProgress(progress, gatherTracksUpdate(i+1, len(sources), source, len(matches)))

		for _, pl := range matches {
			tracks, err := e.library.PlaylistTracks(ctx, pl.ID)
			if err != nil {
				return result, err
			}
			ids = append(ids, models.TrackIDs(tracks)...)
		}
	}
	result.Found = len(ids)

	unique, duplicates := Dedupe(ids)
	result.Duplicates = duplicates
	e.sendProgress(progress, deduplicateUpdate(len(ids), duplicates))

	e.sendProgress(progress, shuffleUpdate(len(unique), limit))
	e.rand.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}

	if len(unique) > 0 {
		e.sendProgress(progress, addTracksUpdate(len(unique), title))
		if _, err := e.library.AddTracks(ctx, unique, targetID); err != nil {
			return result, err
		}
	}
	result.Added = len(unique)

	e.logger.Info("playlist reconciled", "title", title, "id", targetID, "added", result.Added, "duplicates", duplicates)
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// resetTarget leaves exactly one empty playlist titled title and stamps its description.
func (e *PlaylistEngine) resetTarget(ctx context.Context, progress chan<- ProgressUpdate, title string) (int64, bool, int, error) {
	playlists, err := e.library.MyPlaylists(ctx, true)
	if err != nil {
		return 0, false, 0, err
	}

	matches := models.FilterByTitle(playlists, title)
	e.sendProgress(progress, resetTargetUpdate(title, len(matches)))

	var (
		id      int64
		created bool
		removed int
	)
	switch len(matches) {
	case 0:
		created = true
	case 1:
		id = matches[0].ID
		if err := e.library.PurgePlaylist(ctx, id); err != nil {
			return 0, false, 0, err
		}
	default:
		for _, pl := range matches {
			if _, err := e.library.RemovePlaylist(ctx, pl.ID); err != nil {
				return 0, false, removed, err
			}
			removed++
		}
		created = true
	}

	if created {
		if id, err = e.library.CreatePlaylist(ctx, title); err != nil {
			return 0, false, removed, err
		}
	}

	description := "Reset " + e.now().Format(DescriptionLayout)
	if err := e.library.SetPlaylistDescription(ctx, id, description); err != nil {
		return 0, false, removed, err
	}

	e.sendProgress(progress, targetReadyUpdate(title, id))
	return id, created, removed, nil
}

// MissingTitles returns the titles, in order and without repeats, that match no playlist.
func MissingTitles(playlists []models.Playlist, titles []string) []string {
	known := make(map[string]struct{}, len(playlists))
	for _, pl := range playlists {
		known[pl.Title] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{})
	for _, t := range titles {
		if _, ok := known[t]; ok {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		missing = append(missing, t)
	}
	return missing
}

// Dedupe keeps the first occurrence of every id and reports how many were dropped.
func Dedupe(ids []int64) ([]int64, int) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique, len(ids) - len(unique)
}

func quoteAll(titles []string) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = strconv.Quote(t)
	}
	return strings.Join(quoted, ", ")
}
