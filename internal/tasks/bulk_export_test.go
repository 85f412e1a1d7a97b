package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
	tu "github.com/desertthunder/phono/internal/testing"
)

func catalog(n int) (mockPlaylists, []string) {
	playlists := mockPlaylists{}
	ids := make([]string, n)
	for i := range n {
		id := fmt.Sprintf("playlist%d", i+1)
		ids[i] = id
		playlists[id] = models.Playlist{ID: id, Name: fmt.Sprintf("Playlist %d", i+1), Songs: tu.Songs(i + 1)}
	}
	return playlists, ids
}

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		playlistCount  int
		validateResult func(t *testing.T, result *BulkExportResult, tempDir string)
	}{
		{
			name:          "single playlist json export",
			format:        formatter.FormatJSON,
			playlistCount: 1,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				if len(result.Results[0].Files) != 1 {
					t.Errorf("expected 1 file, got %d", len(result.Results[0].Files))
				}
				tu.AssertFileExists(t, filepath.Join(tempDir, "playlist1.json"))
			},
		},
		{
			name:          "multiple playlists csv export",
			format:        formatter.FormatCSV,
			playlistCount: 3,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
				tu.AssertFileExists(t, filepath.Join(tempDir, "playlist3_songs.csv"))
			},
		},
		{
			name:          "markdown export",
			format:        formatter.FormatMarkdown,
			playlistCount: 2,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				tu.AssertFileExists(t, filepath.Join(tempDir, "playlist2", "README.md"))
			},
		},
		{
			name:          "text export",
			format:        formatter.FormatText,
			playlistCount: 2,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				tu.AssertFileExists(t, filepath.Join(tempDir, "playlist1_songs.txt"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playlists, ids := catalog(tt.playlistCount)
			tempDir := t.TempDir()
			engine := NewEngine(nil, playlists, nil)

			result, err := engine.BulkExport(context.Background(), nil, ids, BulkExportOpts{Format: tt.format, OutputDir: tempDir, Workers: 2})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.playlistCount || result.FailedExports != 0 {
				t.Errorf("expected %d successes, got %d (%d failed)", tt.playlistCount, result.SuccessfulExports, result.FailedExports)
			}
			if len(result.Results) != tt.playlistCount {
				t.Fatalf("expected %d results, got %d", tt.playlistCount, len(result.Results))
			}
			for i, res := range result.Results {
				if res.PlaylistID != ids[i] {
					t.Errorf("results should follow input order, got %s at %d", res.PlaylistID, i)
				}
			}
			tu.AssertFileExists(t, result.ManifestPath)
			tt.validateResult(t, result, tempDir)
		})
	}
}

func TestBulkExport_PartialFailure(t *testing.T) {
	playlists, ids := catalog(2)
	ids = append(ids, "missing")
	tempDir := t.TempDir()
	progress := make(chan ProgressUpdate, 32)

	result, err := NewEngine(nil, playlists, nil).BulkExport(context.Background(), progress, ids, BulkExportOpts{OutputDir: tempDir})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Errorf("expected 2 successes and 1 failure, got %d/%d", result.SuccessfulExports, result.FailedExports)
	}

	failed := result.Results[2]
	if failed.Success || !errors.Is(failed.Error, shared.ErrPlaylistNotFound) {
		t.Errorf("expected a not-found failure, got %+v", failed)
	}

	var manifest struct {
		Format  string `json:"format"`
		Failed  int    `json:"failed_exports"`
		Results []struct {
			PlaylistID string `json:"playlist_id"`
			Error      string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(tu.MustReadFile(t, filepath.Join(tempDir, ManifestName))), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.Format != formatter.FormatJSON || manifest.Failed != 1 || manifest.Results[2].Error == "" {
		t.Errorf("unexpected manifest %+v", manifest)
	}

	var phases []Phase
	for _, u := range drain(progress) {
		phases = append(phases, u.Phase)
	}
	if len(phases) != 4 || phases[3] != WriteManifest {
		t.Errorf("expected three export updates then the manifest, got %v", phases)
	}
}

func TestBulkExport_Validation(t *testing.T) {
	playlists, ids := catalog(1)

	t.Run("unknown format", func(t *testing.T) {
		_, err := NewEngine(nil, playlists, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("no playlist source", func(t *testing.T) {
		_, err := NewEngine(nil, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("output directory is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		if _, err := NewEngine(nil, playlists, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{OutputDir: dir}); err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		tu.AssertDirExists(t, dir)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dir := t.TempDir()
		result, err := NewEngine(nil, playlists, nil).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result.SuccessfulExports != 0 {
			t.Errorf("expected no exports, got %d", result.SuccessfulExports)
		}
		if _, err := os.Stat(filepath.Join(dir, "playlist1.json")); !os.IsNotExist(err) {
			t.Error("no playlist should be written after cancellation")
		}
	})
}
