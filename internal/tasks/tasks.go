package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/desertthunder/phono/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 16
)

// PlaylistSource loads playlist snapshots by ID.
type PlaylistSource interface {
	Snapshot(id string) (models.Playlist, error)
}

// cachePather is implemented by resolvers that can say where a song would be cached.
type cachePather interface {
	CachePath(song models.Song) (string, error)
}

// Engine runs cache warm-ups and bulk exports.
type Engine struct {
	resolver  playback.MediaResolver
	playlists PlaylistSource
	logger    *log.Logger
}

// NewEngine creates an engine. Either dependency may be nil when the matching
// operation is not used.
func NewEngine(resolver playback.MediaResolver, playlists PlaylistSource, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{resolver: resolver, playlists: playlists, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// PrefetchOpts configures a cache warm-up.
type PrefetchOpts struct {
	Workers   int     // concurrent downloads (default 4, max 16)
	RateLimit float64 // downloads started per second, 0 for unlimited
}

// SongResult is the outcome for one song.
type SongResult struct {
	Song          models.Song
	Path          string
	AlreadyCached bool
	Error         error
}

// PrefetchResult summarizes a cache warm-up.
type PrefetchResult struct {
	Total         int // remote songs considered
	Skipped       int // local songs, never cached
	Downloaded    int
	AlreadyCached int
	Failed        int
	Results       []SongResult
}

// Prefetch resolves every remote song into the cache with a bounded worker
// pool. Local songs are skipped, and songs sharing a cache file are fetched once. Individual failures are
// collected in the result; the returned error is only set when ctx ends
// before every song was attempted.
func (e *Engine) Prefetch(ctx context.Context, progress chan<- ProgressUpdate, songs []models.Song, opts PrefetchOpts) (*PrefetchResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, MaxWorkers)

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	remote := make([]models.Song, 0, len(songs))
	seen := make(map[string]bool)
	result := &PrefetchResult{}
	for _, s := range songs {
		if !s.IsRemote() {
			result.Skipped++
			continue
		}
		if key := cacheKey(s); !seen[key] {
			seen[key] = true
			remote = append(remote, s)
		}
	}
	result.Total = len(remote)
	result.Results = make([]SongResult, 0, len(remote))

	e.sendProgress(progress, resolveStartUpdate(len(remote), result.Skipped))

	jobs := make(chan models.Song)
	results := make(chan SongResult, len(remote))

	var wg sync.WaitGroup
	for range min(workers, max(len(remote), 1)) {
		wg.Add(1)
		go e.prefetchWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, s := range remote {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		switch {
		case res.Error != nil:
			result.Failed++
		case res.AlreadyCached:
			result.AlreadyCached++
		default:
			result.Downloaded++
		}
		e.sendProgress(progress, resolvedUpdate(len(result.Results), result.Total, res))
	}

	var err error
	if attempted := len(result.Results); attempted < result.Total {
		err = fmt.Errorf("cache warm-up stopped after %d of %d songs: %w", attempted, result.Total, context.Cause(ctx))
	}
	e.logger.Info("cache warm-up finished",
		"downloaded", result.Downloaded, "cached", result.AlreadyCached,
		"failed", result.Failed, "skipped", result.Skipped)
	return result, err
}

func (e *Engine) prefetchWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.Song, results chan<- SongResult) {
	defer wg.Done()

	for s := range jobs {
		res := SongResult{Song: s, AlreadyCached: e.isCached(s)}
		ref, err := e.resolver.Resolve(ctx, s)
		if err != nil {
			res.Error = err
			res.AlreadyCached = false
			e.logger.Warn("failed to cache song", "song", s.String(), "err", err)
		} else {
			res.Path = ref.Path
		}
		results <- res
	}
}

func (e *Engine) isCached(s models.Song) bool {
	cp, ok := e.resolver.(cachePather)
	if !ok {
		return false
	}
	path, err := cp.CachePath(s)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// PrefetchPlaylists loads each playlist and warms the cache with their songs.
func (e *Engine) PrefetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts PrefetchOpts) (*PrefetchResult, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	var songs []models.Song
	for i, id := range ids {
		e.sendProgress(progress, loadPlaylistUpdate(i+1, len(ids), id))
		p, err := e.playlists.Snapshot(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load playlist %s: %w", id, err)
		}
		songs = append(songs, p.Songs...)
	}
	return e.Prefetch(ctx, progress, songs, opts)
}

// cacheKey names the cache file a song resolves to, falling back to its source.
func cacheKey(s models.Song) string {
	if key, err := playback.CacheKey(s); err == nil {
		return key
	}
	return s.Source
}
