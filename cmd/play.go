package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/desertthunder/phono/internal/repositories"
	"github.com/desertthunder/phono/internal/shared"
	"github.com/desertthunder/phono/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play loads the requested playlist or songs into a fresh session and plays them,
// either in the now-playing screen or headless until the queue runs out.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	headless := cmd.Bool("headless")

	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	start, err := r.selection(cat, cmd.String("playlist"), cmd.StringSlice("song"))
	if err != nil {
		return err
	}
	if start == nil && headless {
		return fmt.Errorf("%w: --playlist or --song is required with --headless", shared.ErrMissingArgument)
	}

	userID, err := r.lookupUser(cat, cmd.String("user"))
	if err != nil {
		return err
	}

	if !headless {
		// the terminal belongs to the UI from here on
		fileLogger, closer, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer closer.Close()
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	backend, err := r.mediaBackend(cmd.Int("volume"))
	if err != nil {
		return err
	}

	shuffle := r.config.Player.Shuffle
	if cmd.IsSet("shuffle") {
		shuffle = cmd.Bool("shuffle")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		session *playback.Session
		started atomic.Int64
	)
	observers := []playback.SongStartedObserver{
		repositories.NewPlayStatsAdapter(cat.songs),
		repositories.NewRecentActivityAdapter(cat.songs, cat.recent, userID),
	}
	if headless {
		observers = append(observers, playback.ObserverFunc(func(song models.Song) error {
			started.Add(1)
			_, dur := session.Elapsed()
			return r.writePlain("▶ %s [%s]\n", song.String(), formatter.FormatDuration(dur))
		}))
	}

	loop := playback.NewLoop()
	session = playback.NewSession(r.resolver(), backend,
		playback.WithLogger(shared.WithLogger(r.logger, "component", "session")),
		playback.WithContext(runCtx),
		playback.WithDispatcher(loop.Dispatch),
		playback.WithShuffle(shuffle),
		playback.WithObservers(observers...),
	)

	go loop.Run(runCtx)
	defer func() {
		cancel()
		<-loop.Stopped()
		session.Close()
	}()

	if headless {
		return r.playHeadless(runCtx, loop, session, start, &started)
	}
	return r.playTUI(runCtx, cat, loop, session, start)
}

// selection turns the play flags into the first transport call, or nil when nothing was requested.
func (r *Runner) selection(cat *catalog, playlistID string, songIDs []string) (func(*playback.Session), error) {
	switch {
	case playlistID != "" && len(songIDs) > 0:
		return nil, fmt.Errorf("%w: use either --playlist or --song", shared.ErrInvalidFlag)
	case playlistID != "":
		p, err := cat.playlists.Snapshot(playlistID)
		if err != nil {
			return nil, err
		}
		return func(s *playback.Session) { s.LoadPlaylist(p) }, nil
	case len(songIDs) > 0:
		songs := make([]models.Song, 0, len(songIDs))
		for _, id := range songIDs {
			song, err := cat.songs.Get(id)
			if err != nil {
				return nil, err
			}
			songs = append(songs, song.Song())
		}
		return func(s *playback.Session) { s.LoadVirtualPlaylist(songs) }, nil
	default:
		return nil, nil
	}
}

// playHeadless starts playback and blocks until the session ends or ctx is cancelled.
// A loaded playlist refills the queue when it runs out, so only a failure, an empty
// selection or an interrupt ends it.
func (r *Runner) playHeadless(ctx context.Context, loop *playback.Loop, session *playback.Session, start func(*playback.Session), started *atomic.Int64) error {
	ended := make(chan struct{})
	var once sync.Once

	session.Subscribe(playback.ListenerFuncs{
		State: func(e playback.StateEvent) {
			if e.State == playback.Ended {
				once.Do(func() { close(ended) })
			}
		},
	})

	loop.Dispatch(func() { start(session) })

	select {
	case <-ended:
		r.writePlain("■ Playback ended after %d songs\n", started.Load())
	case <-ctx.Done():
		r.writePlain("\n■ Stopped after %d songs\n", started.Load())
	}
	return nil
}

// playTUI runs the now-playing screen. Transport commands go through the loop and
// session events come back as program messages through a relay, so the loop never
// waits on the UI.
func (r *Runner) playTUI(ctx context.Context, cat *catalog, loop *playback.Loop, session *playback.Session, start func(*playback.Session)) error {
	playlists, err := r.snapshots(cat)
	if err != nil {
		return err
	}

	model := ui.NewModel(session, loop.Dispatch, playlists)
	program := tea.NewProgram(model, tea.WithAltScreen())
	relay := ui.NewRelay(program.Send)
	go relay.Run(ctx)
	ui.Forward(session, relay.Send)

	if start != nil {
		loop.Dispatch(func() { start(session) })
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// snapshots loads every playlist with its songs for the picker.
func (r *Runner) snapshots(cat *catalog) ([]models.Playlist, error) {
	persisted, err := cat.playlists.List(nil)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(persisted))
	for _, p := range persisted {
		snap, err := cat.playlists.Snapshot(p.ID())
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, snap)
	}
	return playlists, nil
}
