// Deezer implementation of [Library]
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/shared"
)

// Largest number of track ids sent in a single request.
const (
	MaxAddChunk    = 500
	MaxDeleteChunk = 500
)

// DeezerOpts configures a [DeezerService].
type DeezerOpts struct {
	API         *APIService
	Users       UserSource
	AddChunk    int
	DeleteChunk int
	Logger      *log.Logger
}

// DeezerService provides playlist and track operations on the authenticated user's library.
type DeezerService struct {
	api         *APIService
	users       UserSource
	addChunk    int
	deleteChunk int
	logger      *log.Logger

	mu          sync.Mutex
	myPlaylists []models.Playlist
}

// NewDeezerService creates a library backed by api. Users resolves the owner for playlist creation.
func NewDeezerService(opts DeezerOpts) *DeezerService {
	if opts.AddChunk <= 0 || opts.AddChunk > MaxAddChunk {
		opts.AddChunk = MaxAddChunk
	}
	if opts.DeleteChunk <= 0 || opts.DeleteChunk > MaxDeleteChunk {
		opts.DeleteChunk = MaxDeleteChunk
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &DeezerService{
		api:         opts.API,
		users:       opts.Users,
		addChunk:    opts.AddChunk,
		deleteChunk: opts.DeleteChunk,
		logger:      opts.Logger,
	}
}

// MyPlaylists returns the user's playlists. They are fetched again when forced or when the memo is empty.
func (s *DeezerService) MyPlaylists(ctx context.Context, forced bool) ([]models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.myPlaylists) > 0 && !forced {
		return s.myPlaylists, nil
	}

	resp, err := s.api.Get(ctx, "/user/me/playlists", List, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	playlists, err := DecodeItems[models.Playlist](resp)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched playlists", "count", len(playlists))
	s.myPlaylists = playlists
	return playlists, nil
}

// PlaylistTracks returns every track of a playlist.
func (s *DeezerService) PlaylistTracks(ctx context.Context, playlistID int64) ([]models.Track, error) {
	resp, err := s.api.Get(ctx, playlistPath(playlistID)+"/tracks", List, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks of playlist %d: %w", playlistID, err)
	}
	return DecodeItems[models.Track](resp)
}

// CreatePlaylist creates an empty playlist owned by the current user.
func (s *DeezerService) CreatePlaylist(ctx context.Context, title string) (int64, error) {
	user, err := s.users.User(ctx)
	if err != nil {
		return 0, err
	}

	path := "/user/" + strconv.FormatInt(user.ID, 10) + "/playlists"
	resp, err := s.api.Post(ctx, path, Single, url.Values{"title": {title}})
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist %q: %w", title, err)
	}
	if resp.IsBool() {
		return 0, fmt.Errorf("%w: playlist creation returned %t", shared.ErrUnexpectedResponse, resp.True())
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := resp.Decode(&created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("%w: playlist creation returned no id", shared.ErrUnexpectedResponse)
	}
	return created.ID, nil
}

// RemovePlaylist deletes a playlist and reports Deezer's confirmation.
func (s *DeezerService) RemovePlaylist(ctx context.Context, playlistID int64) (bool, error) {
	resp, err := s.api.Delete(ctx, playlistPath(playlistID), Single, nil)
	if err != nil {
		return false, fmt.Errorf("failed to remove playlist %d: %w", playlistID, err)
	}
	return resp.True(), nil
}

// PurgePlaylist removes all tracks of a playlist in chunks.
func (s *DeezerService) PurgePlaylist(ctx context.Context, playlistID int64) error {
	tracks, err := s.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	for _, ids := range Chunk(models.TrackIDs(tracks), s.deleteChunk) {
		params := url.Values{"songs": {JoinIDs(ids)}}
		if _, err := s.api.Delete(ctx, playlistPath(playlistID)+"/tracks", Single, params); err != nil {
			return fmt.Errorf("failed to purge playlist %d: %w", playlistID, err)
		}
	}

	s.logger.Debug("purged playlist", "id", playlistID, "tracks", len(tracks))
	return nil
}

// AddTracks appends tracks to a playlist in chunks. Reports true only if every chunk was confirmed.
func (s *DeezerService) AddTracks(ctx context.Context, trackIDs []int64, playlistID int64) (bool, error) {
	confirmed := true
	for _, ids := range Chunk(trackIDs, s.addChunk) {
		params := url.Values{"songs": {JoinIDs(ids)}}
		resp, err := s.api.Post(ctx, playlistPath(playlistID)+"/tracks", Single, params)
		if err != nil {
			return false, fmt.Errorf("failed to add tracks to playlist %d: %w", playlistID, err)
		}
		confirmed = confirmed && resp.True()
	}
	return confirmed, nil
}

// SetPlaylistDescription replaces the description of a playlist.
func (s *DeezerService) SetPlaylistDescription(ctx context.Context, playlistID int64, description string) error {
	params := url.Values{"description": {description}}
	if _, err := s.api.Post(ctx, playlistPath(playlistID), Single, params); err != nil {
		return fmt.Errorf("failed to update description of playlist %d: %w", playlistID, err)
	}
	return nil
}

func playlistPath(id int64) string {
	return "/playlist/" + strconv.FormatInt(id, 10)
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}

	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// JoinIDs renders ids as a comma separated list.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
