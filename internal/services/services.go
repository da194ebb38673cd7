// package services defines the Deezer API client, the authorization manager and the playlist library built on top of them.
package services

import (
	"context"

	"github.com/desertthunder/dzshuffled/internal/models"
)

// Library defines the playlist and track operations available on the user's Deezer library.
type Library interface {
	// MyPlaylists returns the user's playlists, served from an in-process memo unless forced.
	MyPlaylists(ctx context.Context, forced bool) ([]models.Playlist, error)

	// PlaylistTracks returns every track of a playlist, following pagination.
	PlaylistTracks(ctx context.Context, playlistID int64) ([]models.Track, error)

	// CreatePlaylist creates an empty playlist and returns its id.
	CreatePlaylist(ctx context.Context, title string) (int64, error)

	// RemovePlaylist deletes a playlist outright.
	RemovePlaylist(ctx context.Context, playlistID int64) (bool, error)

	// PurgePlaylist removes every track from a playlist without deleting it.
	PurgePlaylist(ctx context.Context, playlistID int64) error

	// AddTracks appends tracks to a playlist.
	AddTracks(ctx context.Context, trackIDs []int64, playlistID int64) (bool, error)

	// SetPlaylistDescription replaces the description of a playlist.
	SetPlaylistDescription(ctx context.Context, playlistID int64, description string) error
}

// Authorizer obtains an authorization code from an interactive, user driven flow.
//
// Implementations open authURL for the user and block until the provider redirects back to the local port.
type Authorizer interface {
	AuthorizationCode(ctx context.Context, authURL string, port int) (string, error)
}

// TokenStore persists a refreshed token.
type TokenStore interface {
	Set(section, option, value string) error
}

// UserSource resolves the authenticated user.
type UserSource interface {
	User(ctx context.Context) (*models.User, error)
}

// TokenSource exposes the current bearer token.
type TokenSource interface {
	Token() string
}
