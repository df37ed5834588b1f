package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"tunesync/internal/shared"
	"tunesync/internal/ui"
)

// Playlists lists playlists from Spotify or the local library.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("local") {
		return r.localPlaylists(ctx)
	}

	remote, err := r.requireRemote()
	if err != nil {
		return err
	}

	if err := remote.Authenticate(ctx, r.config.Credentials.Spotify.Map()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	playlists, err := remote.GetPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("pick") {
		picked, err := ui.PickPlaylist(playlists)
		if err != nil {
			return err
		}
		if picked == nil {
			return r.writePlain("No playlist selected\n")
		}
		return r.writePlain("%s (%d tracks)\n", picked.Name, picked.TrackCount)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("%s playlists (%d):\n\n", remote.Name(), len(playlists))
	for i, pl := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, pl.Name, pl.TrackCount)
		if pl.Description != "" {
			r.writePlain("   %s\n", pl.Description)
		}
	}

	return nil
}

func (r *Runner) localPlaylists(ctx context.Context) error {
	names, err := r.local.PlaylistNames(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCollaborator, err)
	}

	r.writePlain("%s playlists (%d):\n\n", r.local.Name(), len(names))
	for i, name := range names {
		r.writePlain("%d. %s\n", i+1, name)
	}

	return nil
}
