package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/media"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/desertthunder/phono/internal/repositories"
	"github.com/desertthunder/phono/internal/services"
	"github.com/desertthunder/phono/internal/shared"
	"github.com/desertthunder/phono/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	fetcher    services.Fetcher
	backend    playback.MediaBackend
	db         *sql.DB
	ownsDB     bool
	catalog    *catalog
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Fetcher    services.Fetcher      // default: HTTP fetcher built from the cache config
	Backend    playback.MediaBackend // default: speaker backend built from the player config
	DB         *sql.DB               // default: opened from the database config on first use
}

// catalog groups the repositories backing the library commands.
type catalog struct {
	songs     *repositories.SongRepository
	playlists *repositories.PlaylistRepository
	users     *repositories.UserRepository
	recent    *repositories.RecentRepository
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Fetcher == nil {
		fetcher, err := services.NewHTTPFetcherFromConfig(opts.Config.Cache)
		if err != nil {
			opts.Logger.Warn("downloading without extra headers", "file", opts.Config.Cache.HeadersFile, "err", err)
		}
		opts.Fetcher = fetcher
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		fetcher:    opts.Fetcher,
		backend:    opts.Backend,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, songCommand, playlistCommand, userCommand, playCommand, cacheCommand, recentCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequently created components.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the catalog database if the runner opened it.
func (r *Runner) Close() error {
	if !r.ownsDB || r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.catalog, r.ownsDB = nil, nil, false
	return err
}

// openCatalog opens the database on first use, applying pending migrations.
func (r *Runner) openCatalog() (*catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	if r.db == nil {
		db, err := shared.OpenCatalog(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("%w: catalog database: %w", shared.ErrServiceUnavailable, err)
		}
		r.db, r.ownsDB = db, true
	}

	r.catalog = &catalog{
		songs:     repositories.NewSongRepository(r.db),
		playlists: repositories.NewPlaylistRepository(r.db),
		users:     repositories.NewUserRepository(r.db),
		recent:    repositories.NewRecentRepository(r.db),
	}
	return r.catalog, nil
}

// resolver builds the media resolver over the configured cache directory.
func (r *Runner) resolver() *playback.Resolver {
	return playback.NewResolver(r.config.Cache.CacheDir(), r.fetcher, shared.WithLogger(r.logger, "component", "resolver"))
}

// mediaBackend returns the injected backend or a speaker backend initialized eagerly,
// so a missing sound device is reported before anything is downloaded.
func (r *Runner) mediaBackend(volume int) (playback.MediaBackend, error) {
	if r.backend != nil {
		return r.backend, nil
	}

	cfg := r.config.Player
	if volume >= 0 {
		cfg.Volume = min(volume, 100)
	}

	b := media.NewBackendFromConfig(cfg, shared.WithLogger(r.logger, "component", "media"))
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Runner) engine(cat *catalog) *tasks.Engine {
	var playlists tasks.PlaylistSource
	if cat != nil {
		playlists = cat.playlists
	}
	return tasks.NewEngine(r.resolver(), playlists, shared.WithLogger(r.logger, "component", "tasks"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
