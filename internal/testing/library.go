package testing

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/desertthunder/dzshuffled/internal/models"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// MockLibrary is an in-memory test double for [services.Library].
//
// Every call is recorded in Calls. Errors maps a method name to the error it should return.
type MockLibrary struct {
	mu           sync.Mutex
	Playlists    []models.Playlist
	Tracks       map[int64][]models.Track
	Descriptions map[int64]string
	Errors       map[string]error
	Calls        []string
	Added        [][]int64
	nextID       int64
}

// NewMockLibrary creates a library holding playlists, each filled with the tracks keyed by its id.
func NewMockLibrary(playlists []models.Playlist, tracks map[int64][]models.Track) *MockLibrary {
	if tracks == nil {
		tracks = map[int64][]models.Track{}
	}
	return &MockLibrary{
		Playlists:    slices.Clone(playlists),
		Tracks:       tracks,
		Descriptions: map[int64]string{},
		Errors:       map[string]error{},
		nextID:       1000,
	}
}

func (m *MockLibrary) record(call string) error {
	m.Calls = append(m.Calls, call)
	method := call
	for i, r := range call {
		if r == ' ' {
			method = call[:i]
			break
		}
	}
	return m.Errors[method]
}

// CallCount returns how many recorded calls start with prefix.
func (m *MockLibrary) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (m *MockLibrary) MyPlaylists(ctx context.Context, forced bool) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(fmt.Sprintf("MyPlaylists %t", forced)); err != nil {
		return nil, err
	}
	return slices.Clone(m.Playlists), nil
}

func (m *MockLibrary) PlaylistTracks(ctx context.Context, playlistID int64) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("PlaylistTracks " + itoa(playlistID)); err != nil {
		return nil, err
	}
	return slices.Clone(m.Tracks[playlistID]), nil
}

func (m *MockLibrary) CreatePlaylist(ctx context.Context, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreatePlaylist " + title); err != nil {
		return 0, err
	}
	id := m.nextID
	m.nextID++
	m.Playlists = append(m.Playlists, models.Playlist{ID: id, Title: title})
	return id, nil
}

func (m *MockLibrary) RemovePlaylist(ctx context.Context, playlistID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemovePlaylist " + itoa(playlistID)); err != nil {
		return false, err
	}
	m.Playlists = slices.DeleteFunc(m.Playlists, func(p models.Playlist) bool { return p.ID == playlistID })
	delete(m.Tracks, playlistID)
	return true, nil
}

func (m *MockLibrary) PurgePlaylist(ctx context.Context, playlistID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("PurgePlaylist " + itoa(playlistID)); err != nil {
		return err
	}
	m.Tracks[playlistID] = nil
	return nil
}

func (m *MockLibrary) AddTracks(ctx context.Context, trackIDs []int64, playlistID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddTracks " + itoa(playlistID)); err != nil {
		return false, err
	}
	m.Added = append(m.Added, slices.Clone(trackIDs))
	for _, id := range trackIDs {
		m.Tracks[playlistID] = append(m.Tracks[playlistID], models.Track{ID: id})
	}
	return true, nil
}

func (m *MockLibrary) SetPlaylistDescription(ctx context.Context, playlistID int64, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetPlaylistDescription " + itoa(playlistID)); err != nil {
		return err
	}
	m.Descriptions[playlistID] = description
	return nil
}
