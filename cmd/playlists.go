package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dzshuffled/internal/formatter"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists every playlist in the user's library as a table, JSON or CSV.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") && cmd.Bool("csv") {
		return fmt.Errorf("%w: --json and --csv cannot be combined", shared.ErrInvalidArgument)
	}

	if err := r.ensureToken(ctx); err != nil {
		return err
	}

	playlists, err := r.library.MyPlaylists(ctx, true)
	if err != nil {
		return err
	}
	r.logger.Debug("fetched playlists", "count", len(playlists))

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(playlists)
	case cmd.Bool("csv"):
		data, err := formatter.PlaylistsToCSV(playlists)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	default:
		return r.writeBytes(formatter.PlaylistsToText(playlists))
	}
}

// Tracks prints the tracks of every playlist titled TITLE.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: playlist title", shared.ErrMissingArgument)
	}

	if err := r.ensureToken(ctx); err != nil {
		return err
	}

	playlists, err := r.library.MyPlaylists(ctx, true)
	if err != nil {
		return err
	}
	matches := models.FilterByTitle(playlists, title)
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, title)
	}

	type export struct {
		Playlist models.Playlist `json:"playlist"`
		Tracks   []models.Track  `json:"tracks"`
	}
	exports := make([]export, 0, len(matches))
	for _, p := range matches {
		tracks, err := r.library.PlaylistTracks(ctx, p.ID)
		if err != nil {
			return err
		}
		exports = append(exports, export{Playlist: p, Tracks: tracks})
	}

	if cmd.Bool("json") {
		return r.writeJSON(exports)
	}
	for i, e := range exports {
		if i > 0 {
			r.writePlain("\n")
		}
		if err := r.writeBytes(formatter.TracksToText(e.Playlist.Title, e.Tracks)); err != nil {
			return err
		}
	}
	return nil
}
