package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/shared"
)

// ManifestName is the summary file written at the root of a bulk export.
const ManifestName = "export_manifest.json"

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format    string // json, csv, markdown, txt
	OutputDir string // default: phono_export_{epoch}
	Workers   int    // concurrent writers (default 4, max 16)
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name,omitempty"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as its manifest.
type BulkExportResult struct {
	Format            string                 `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// BulkExport writes every playlist in ids to opts.OutputDir using a worker pool,
// then writes a manifest summarizing the run.
//
// A playlist that cannot be loaded or written is recorded as failed; the others still export.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("phono_export_%d", time.Now().Unix())
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	opts.Workers = min(opts.Workers, MaxWorkers)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC().Truncate(time.Second),
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	jobs := make(chan string, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			res.ErrorMessage = res.Error.Error()
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistID, res.Error))
		}
		result.Results = append(result.Results, res)
	}

	// keep the manifest stable regardless of worker scheduling
	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return slices.Index(ids, a.PlaylistID) - slices.Index(ids, b.PlaylistID)
	})

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Engine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- PlaylistExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for id := range jobs {
		if err := ctx.Err(); err != nil {
			results <- PlaylistExportResult{PlaylistID: id, Error: err}
			continue
		}
		results <- e.exportSinglePlaylist(id, opts)
	}
}

func (e *Engine) exportSinglePlaylist(id string, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{PlaylistID: id}

	p, err := e.playlists.Snapshot(id)
	if err != nil {
		result.Error = fmt.Errorf("failed to load playlist: %w", err)
		return result
	}
	result.PlaylistName = p.Name

	files, err := formatter.WriteExport(p, opts.Format, opts.OutputDir)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.Files = files
	result.Success = true
	e.logger.Debug("exported playlist", "id", id, "files", len(files))
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
