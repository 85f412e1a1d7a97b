package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/services"
	"github.com/desertthunder/phono/internal/shared"
	"github.com/mitchellh/hashstructure/v2"
)

const (
	defaultExt    = ".mp3"
	partialSuffix = ".partial"
)

// MediaResolver materializes a song into local media.
type MediaResolver interface {
	Resolve(ctx context.Context, song models.Song) (MediaRef, error)
}

// CacheEntry describes one cached remote song on disk.
type CacheEntry struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// Resolver maps local sources straight to their path and copies remote
// sources into a cache directory named by [CacheKey].
//
// Cache files are written to a temporary name and renamed into place, so a
// failed or cancelled transfer never leaves a file that looks complete.
// Entries are never evicted.
type Resolver struct {
	dir     string
	fetcher services.Fetcher
	logger  *log.Logger

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewResolver creates a resolver caching into dir.
func NewResolver(dir string, fetcher services.Fetcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Resolver{
		dir:     dir,
		fetcher: fetcher,
		logger:  logger,
		locks:   make(map[string]*keyLock),
	}
}

// Dir returns the cache directory.
func (r *Resolver) Dir() string { return r.dir }

// CacheKey derives the stable cache name for song from its descriptive fields.
func CacheKey(song models.Song) (string, error) {
	h, err := hashstructure.Hash(song, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("failed to hash song: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// CachePath returns where a remote song is (or would be) cached.
func (r *Resolver) CachePath(song models.Song) (string, error) {
	key, err := CacheKey(song)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.dir, key+extension(song.Source)), nil
}

// extension takes the file extension from the locator's path, falling back to .mp3.
func extension(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return defaultExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		return defaultExt
	}
	return ext
}

// Resolve blocks until song is available locally.
func (r *Resolver) Resolve(ctx context.Context, song models.Song) (MediaRef, error) {
	return r.ResolveAsync(ctx, song).Wait()
}

// ResolveAsync starts resolving song in the background.
func (r *Resolver) ResolveAsync(ctx context.Context, song models.Song) *Resolution {
	ctx, cancel := context.WithCancel(ctx)
	res := &Resolution{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer cancel()
		defer close(res.done)
		res.ref, res.err = r.resolve(ctx, song)
	}()
	return res
}

func (r *Resolver) resolve(ctx context.Context, song models.Song) (MediaRef, error) {
	locator := strings.TrimSpace(song.Source)
	if locator == "" {
		return MediaRef{}, fmt.Errorf("%w: %s has no source", shared.ErrResolutionFailed, song.Name)
	}

	u, err := url.Parse(locator)
	switch {
	case err != nil || len(u.Scheme) <= 1:
		// plain path, including Windows drive letters
		return r.resolveLocal(song, locator)
	case strings.EqualFold(u.Scheme, "file"):
		return r.resolveLocal(song, filepath.FromSlash(u.Path))
	case song.IsRemote():
		return r.resolveRemote(ctx, song)
	default:
		return MediaRef{}, fmt.Errorf("%w: %w: %s", shared.ErrResolutionFailed, shared.ErrUnsupportedLocator, u.Scheme)
	}
}

func (r *Resolver) resolveLocal(song models.Song, p string) (MediaRef, error) {
	info, err := os.Stat(p)
	if err != nil {
		return MediaRef{}, fmt.Errorf("%w: %w", shared.ErrResolutionFailed, err)
	}
	if info.IsDir() {
		return MediaRef{}, fmt.Errorf("%w: %s is a directory", shared.ErrResolutionFailed, p)
	}
	return MediaRef{Song: song, Path: p}, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, song models.Song) (MediaRef, error) {
	dest, err := r.CachePath(song)
	if err != nil {
		return MediaRef{}, fmt.Errorf("%w: %w", shared.ErrResolutionFailed, err)
	}
	key := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))

	unlock := r.lock(key)
	defer unlock()

	if cached(dest) {
		r.logger.Debug("cache hit", "song", song.Name, "path", dest)
		return MediaRef{Song: song, Path: dest, Remote: true}, nil
	}

	start := time.Now()
	n, err := r.download(ctx, song.Source, dest)
	if err != nil {
		r.logger.Warn("download failed", "song", song.Name, "source", song.Source, "err", err)
		return MediaRef{}, fmt.Errorf("%w: %w", shared.ErrResolutionFailed, err)
	}

	r.logger.Info("cached remote song", "song", song.Name, "bytes", n, "elapsed", time.Since(start))
	return MediaRef{Song: song, Path: dest, Remote: true}, nil
}

// download copies locator into dest through a temp file in the same directory.
func (r *Resolver) download(ctx context.Context, locator, dest string) (n int64, err error) {
	if r.fetcher == nil {
		return 0, shared.ErrServiceUnavailable
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create cache dir: %w", err)
	}

	body, err := r.fetcher.Fetch(ctx, locator)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(r.dir, filepath.Base(dest)+".*"+partialSuffix)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err = io.Copy(tmp, &ctxReader{ctx: ctx, r: body})
	if err != nil {
		return n, fmt.Errorf("transfer interrupted after %d bytes: %w", n, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: empty response body", shared.ErrFetchFailed)
	}
	if err = tmp.Sync(); err != nil {
		return n, fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close cache file: %w", err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return n, fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return n, nil
}

// lock serializes work on one cache key and returns the matching unlock.
func (r *Resolver) lock(key string) func() {
	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &keyLock{}
		r.locks[key] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(r.locks, key)
		}
		r.mu.Unlock()
	}
}

// cacheName matches the files the resolver writes: <16 hex digit key><ext>.
var cacheName = regexp.MustCompile(`^[0-9a-f]{16}\.[^./\\]{0,4}$`)

// CacheEntries lists completed cache files, largest first. Files in the
// directory that the resolver did not name are left out.
func (r *Resolver) CacheEntries() ([]CacheEntry, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache dir: %w", err)
	}

	var entries []CacheEntry
	for _, d := range dirEntries {
		if !d.Type().IsRegular() || !cacheName.MatchString(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, CacheEntry{
			Key:     strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path:    filepath.Join(r.dir, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortFunc(entries, func(a, b CacheEntry) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	return entries, nil
}

func cached(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// ctxReader stops a copy as soon as ctx ends.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Resolution is the pending result of [Resolver.ResolveAsync].
type Resolution struct {
	done   chan struct{}
	cancel context.CancelFunc
	ref    MediaRef
	err    error
}

// Done is closed once the result is available.
func (r *Resolution) Done() <-chan struct{} { return r.done }

// Wait blocks for the result.
func (r *Resolution) Wait() (MediaRef, error) {
	<-r.done
	return r.ref, r.err
}

// Cancel aborts an in-flight transfer. The result then reports a resolution failure.
func (r *Resolution) Cancel() { r.cancel() }
