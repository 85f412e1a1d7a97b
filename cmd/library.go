package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
	"github.com/desertthunder/phono/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SongAdd registers a song in the catalog.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	song := models.NewPersistedSong(0, models.Song{
		Name:   strings.TrimSpace(cmd.String("name")),
		Author: strings.TrimSpace(cmd.String("author")),
		Source: strings.TrimSpace(cmd.String("source")),
		Style:  strings.TrimSpace(cmd.String("style")),
	})
	if err := cat.songs.Create(song); err != nil {
		return err
	}

	r.logger.Debug("song added", "id", song.ID(), "source", song.Source())
	r.writePlain("✓ Added song #%d: %s\n", song.Sequence(), song.Song().String())
	r.writePlain("  ID: %s\n", song.ID())
	return nil
}

// SongList prints catalog songs as a table or JSON.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	criteria := map[string]any{"author": cmd.String("author"), "style": cmd.String("style")}
	if cmd.Bool("remote") {
		criteria["remote"] = true
	}

	songs, err := cat.songs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		values := make([]models.Song, len(songs))
		for i, s := range songs {
			values[i] = s.Song()
		}
		return r.writeJSON(values, true)
	}

	if len(songs) == 0 {
		return r.writePlain("No songs yet. Add one with 'phono song add'.\n")
	}
	return formatter.SongTable(r.output, songs)
}

// SongShow prints one song.
func (r *Runner) SongShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}

	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	song, err := cat.songs.Get(id)
	if err != nil {
		return err
	}

	r.writePlainHeader(song.Song().String())
	r.writePlain("ID:     %s\n", song.ID())
	r.writePlain("Source: %s\n", song.Source())
	r.writePlain("Style:  %s\n", song.Style())
	r.writePlain("Plays:  %d\n", song.PlayCount())
	if song.Song().IsRemote() {
		path, err := r.resolver().CachePath(song.Song())
		if err == nil {
			r.writePlain("Cache:  %s\n", path)
		}
	}
	return nil
}

// SongRemove soft-deletes a song.
func (r *Runner) SongRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song ID", shared.ErrMissingArgument)
	}

	cat, err := r.openCatalog()
	if err != nil {
		return err
	}
	if err := cat.songs.Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed song %s\n", id)
}

// PlaylistCreate creates an empty playlist, optionally owned by a user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	userID, err := r.lookupUser(cat, cmd.String("user"))
	if err != nil {
		return err
	}

	playlist := models.NewPersistedPlaylist(0, userID, strings.TrimSpace(cmd.String("name")), cmd.String("description"))
	if err := cat.playlists.Create(playlist); err != nil {
		return err
	}

	r.writePlain("✓ Created playlist #%d: %s\n", playlist.Sequence(), playlist.Name())
	r.writePlain("  ID: %s\n", playlist.ID())
	return nil
}

// PlaylistAdd appends songs to a playlist in the order given.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	playlistID := cmd.String("playlist")
	for _, songID := range cmd.StringSlice("song") {
		if _, err := cat.songs.Get(songID); err != nil {
			return err
		}
		if err := cat.playlists.AddSong(playlistID, songID); err != nil {
			return err
		}
	}

	p, err := cat.playlists.Snapshot(playlistID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s now has %d songs\n", p.Name, p.Len())
}

// PlaylistRemove removes every occurrence of a song from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	if err := cat.playlists.RemoveSong(cmd.String("playlist"), cmd.String("song")); err != nil {
		return err
	}
	return r.writePlain("✓ Removed song %s\n", cmd.String("song"))
}

// PlaylistList prints playlists, optionally only those of one user.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	userID, err := r.lookupUser(cat, cmd.String("user"))
	if err != nil {
		return err
	}

	playlists, err := cat.playlists.List(map[string]any{"user_id": userID})
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists yet. Create one with 'phono playlist create'.\n")
	}
	return formatter.PlaylistTable(r.output, playlists)
}

// PlaylistShow prints a playlist with its songs.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	p, err := cat.playlists.Snapshot(id)
	if err != nil {
		return err
	}
	return formatter.PlaylistSongs(r.output, p)
}

// PlaylistExport writes playlists to disk concurrently and reports each result.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if !formatter.ValidFormat(format) {
		return fmt.Errorf("%w: unknown export format %q (want one of %v)", shared.ErrInvalidFlag, format, formatter.Formats)
	}

	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		playlists, err := cat.playlists.List(nil)
		if err != nil {
			return err
		}
		for _, p := range playlists {
			ids = append(ids, p.ID())
		}
	}
	if len(ids) == 0 {
		return r.writePlain("No playlists to export.\n")
	}

	r.logger.Info("starting bulk export", "playlists", len(ids), "format", format)

	progressCh := make(chan tasks.ProgressUpdate, len(ids)+1)
	done := r.printProgress(progressCh)

	result, err := r.engine(cat).BulkExport(ctx, progressCh, ids, tasks.BulkExportOpts{
		Format:    format,
		OutputDir: cmd.String("output"),
		Workers:   cmd.Int("workers"),
	})
	close(progressCh)
	<-done

	if result == nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d playlists:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.PlaylistID, res.ErrorMessage)
			}
		}
	}
	return err
}

// UserAdd registers a listener.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	user := models.NewUser(0, strings.TrimSpace(cmd.String("email")), cmd.String("name"))
	if err := cat.users.Create(user); err != nil {
		return err
	}
	return r.writePlain("✓ Added user #%d: %s\n", user.Sequence(), user.Email())
}

// UserList prints every listener.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	users, err := cat.users.List(nil)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return r.writePlain("No users yet. Add one with 'phono user add'.\n")
	}
	return formatter.UserTable(r.output, users)
}

// Recent prints the latest plays of a user, or anonymous plays.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	userID, err := r.lookupUser(cat, cmd.String("user"))
	if err != nil {
		return err
	}

	plays, err := cat.recent.List(userID, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(plays) == 0 {
		return r.writePlain("Nothing played yet.\n")
	}
	return formatter.RecentTable(r.output, plays)
}

// lookupUser maps an email onto a user ID. An empty email means no user.
func (r *Runner) lookupUser(cat *catalog, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}

	user, err := cat.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	return user.ID(), nil
}

// printProgress writes progress updates until ch is closed, then closes the returned channel.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			switch update.Phase {
			case tasks.LoadPlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ResolveSongs:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.ExportPlaylist:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()
	return done
}
