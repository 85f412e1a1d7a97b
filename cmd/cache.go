package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// CacheList prints every cached remote song with its size and age.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	resolver := r.resolver()
	entries, err := resolver.CacheEntries()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("Cache is empty (%s)\n", resolver.Dir())
	}
	return formatter.CacheTable(r.output, entries)
}

// CacheWarm downloads remote songs ahead of playback.
//
// With playlist IDs as arguments only their songs are fetched; otherwise every
// remote song in the catalog is.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.openCatalog()
	if err != nil {
		return err
	}

	opts := tasks.PrefetchOpts{Workers: r.config.Cache.Workers, RateLimit: r.config.Cache.RequestsPerSecond}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}
	if rate := cmd.Float("rate"); rate >= 0 {
		opts.RateLimit = rate
	}

	engine := r.engine(cat)
	progressCh := make(chan tasks.ProgressUpdate, 64)
	done := r.printProgress(progressCh)

	var result *tasks.PrefetchResult
	if ids := cmd.Args().Slice(); len(ids) > 0 {
		r.logger.Info("warming cache", "playlists", len(ids), "workers", opts.Workers)
		result, err = engine.PrefetchPlaylists(ctx, progressCh, ids, opts)
	} else {
		songs, lerr := cat.songs.Songs(map[string]any{"remote": true})
		if lerr != nil {
			close(progressCh)
			<-done
			return lerr
		}
		r.logger.Info("warming cache", "songs", len(songs), "workers", opts.Workers)
		result, err = engine.Prefetch(ctx, progressCh, songs, opts)
	}
	close(progressCh)
	<-done

	if result == nil {
		return err
	}

	r.writePlainHeader("Cache Warm-up Complete")
	r.writePlain("Remote songs: %d\n", result.Total)
	r.writePlain("Downloaded: %d\n", result.Downloaded)
	r.writePlain("Already cached: %d\n", result.AlreadyCached)
	r.writePlain("Local (skipped): %d\n", result.Skipped)

	if result.Failed > 0 {
		r.writePlain("\nFailed to cache %d songs:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.Song.String(), res.Error)
			}
		}
	}
	return err
}

// CacheClear deletes every cached file. The engine itself never evicts.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	resolver := r.resolver()
	entries, err := resolver.CacheEntries()
	if err != nil {
		return err
	}

	var freed int64
	var errs []error
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", e.Path, err))
			continue
		}
		freed += e.Size
	}

	r.logger.Info("cache cleared", "dir", resolver.Dir(), "files", len(entries)-len(errs))
	r.writePlain("✓ Removed %d files, freed %s\n", len(entries)-len(errs), humanize.Bytes(uint64(freed)))
	return errors.Join(errs...)
}
