// package formatter renders catalog data for people: playlist exports (CSV, Markdown,
// plain text, JSON) and the tables printed by the CLI.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

// Export formats accepted by [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists the export formats in display order.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// PlaylistMetadata is the JSON document written next to CSV exports.
type PlaylistMetadata struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SongCount   int       `json:"song_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// songRecord is the JSON shape of a song inside a full export.
type songRecord struct {
	Position int    `json:"position"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Author   string `json:"author"`
	Style    string `json:"style,omitempty"`
	Source   string `json:"source"`
}

// ExportToCSV writes one row per song: Position, ID, Name, Author, Style, Source, Plays.
func ExportToCSV(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "ID", "Name", "Author", "Style", "Source", "Plays"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, s := range p.Songs {
		record := []string{
			strconv.Itoa(i + 1),
			s.ID,
			s.Name,
			s.Author,
			s.Style,
			s.Source,
			strconv.Itoa(s.PlayCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders the playlist as a numbered Markdown list.
func ExportToMarkdown(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", displayName(p))
	if p.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
	}
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", p.Len())

	buf.WriteString("## Songs\n\n")
	for i, s := range p.Songs {
		style := ""
		if s.Style != "" {
			style = fmt.Sprintf(" _%s_", s.Style)
		}
		source := "local"
		if s.IsRemote() {
			source = "remote"
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, s.Author, s.Name, style, source)
	}
	return buf.Bytes(), nil
}

// ExportToText renders the playlist as plain "Author - Name" lines.
func ExportToText(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", displayName(p))
	if p.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", p.Len())

	for i, s := range p.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, s.Author, s.Name)
	}
	return buf.Bytes(), nil
}

// ExportToJSON renders metadata and songs as one indented document.
func ExportToJSON(p models.Playlist) ([]byte, error) {
	doc := struct {
		PlaylistMetadata
		Songs []songRecord `json:"songs"`
	}{PlaylistMetadata: metadata(p), Songs: make([]songRecord, len(p.Songs))}

	for i, s := range p.Songs {
		doc.Songs[i] = songRecord{Position: i + 1, ID: s.ID, Name: s.Name, Author: s.Author, Style: s.Style, Source: s.Source}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ToMetadataJSON renders the playlist metadata without songs.
func ToMetadataJSON(p models.Playlist) ([]byte, error) {
	return json.MarshalIndent(metadata(p), "", "  ")
}

func metadata(p models.Playlist) PlaylistMetadata {
	return PlaylistMetadata{
		ID:          p.ID,
		Name:        displayName(p),
		Description: p.Description,
		SongCount:   p.Len(),
		ExportedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

// displayName hides the reserved name of ad-hoc playlists.
func displayName(p models.Playlist) string {
	if p.IsVirtual() {
		return "Ad-hoc selection"
	}
	return p.Name
}

// baseName picks a file-safe name for p's export files.
func baseName(p models.Playlist) string {
	if p.ID != "" {
		return p.ID
	}
	if p.IsVirtual() {
		return "selection"
	}
	return p.Name
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport writes {base}_songs.csv and {base}_metadata.json.
//
// base defaults to the playlist ID in the working directory.
func WriteCSVExport(p models.Playlist, base string) (*CSVExportResult, error) {
	if base == "" {
		base = baseName(p)
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	songsFile := base + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport writes {dir}/README.md, creating dir. dir defaults to the playlist ID.
func WriteMarkdownExport(p models.Playlist, dir string) (string, error) {
	if dir == "" {
		dir = baseName(p)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := ExportToMarkdown(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	path := filepath.Join(dir, "README.md")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return path, nil
}

// WriteTextExport writes the plain text rendering to path, {id}_songs.txt by default.
func WriteTextExport(p models.Playlist, path string) (string, error) {
	if path == "" {
		path = baseName(p) + "_songs.txt"
	}

	data, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteExport writes p into dir in the given format and returns the created files.
func WriteExport(p models.Playlist, format, dir string) ([]string, error) {
	base := filepath.Join(dir, baseName(p))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{res.SongsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		path, err := WriteMarkdownExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatText:
		path, err := WriteTextExport(p, base+"_songs.txt")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatJSON, "":
		data, err := ExportToJSON(p)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JSON: %w", err)
		}
		path := base + ".json"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q (want one of %v)", shared.ErrInvalidArgument, format, Formats)
	}
}

// ValidFormat reports whether format is accepted by [WriteExport].
func ValidFormat(format string) bool { return slices.Contains(Formats, format) }
