package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/dustin/go-humanize"
)

// Table aligns tab-separated rows.
type Table struct {
	w *tabwriter.Writer
}

// NewTable starts a table on out with an optional header row.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row. Tabs inside values would break alignment and are replaced.
func (t *Table) Row(values ...string) {
	for i, v := range values {
		values[i] = strings.ReplaceAll(v, "\t", " ")
	}
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

// Flush writes the aligned output.
func (t *Table) Flush() error { return t.w.Flush() }

// SongTable lists catalog songs.
func SongTable(out io.Writer, songs []*models.PersistedSong) error {
	t := NewTable(out, "ID", "NAME", "AUTHOR", "STYLE", "PLAYS", "SOURCE")
	for _, s := range songs {
		t.Row(s.ID(), Truncate(s.Name(), 40), Truncate(s.Author(), 30), s.Style(), humanize.Comma(int64(s.PlayCount())), Truncate(s.Source(), 60))
	}
	return t.Flush()
}

// PlaylistTable lists playlists with their song counts.
func PlaylistTable(out io.Writer, playlists []*models.PersistedPlaylist) error {
	t := NewTable(out, "ID", "NAME", "SONGS", "DESCRIPTION", "UPDATED")
	for _, p := range playlists {
		t.Row(p.ID(), p.Name(), strconv.Itoa(p.SongCount()), Truncate(p.Description(), 50), humanize.Time(p.UpdatedAt()))
	}
	return t.Flush()
}

// PlaylistSongs lists the songs of one playlist in play order.
func PlaylistSongs(out io.Writer, p models.Playlist) error {
	fmt.Fprintf(out, "%s (%s)\n", displayName(p), pluralize(p.Len(), "song"))
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	fmt.Fprintln(out)

	t := NewTable(out, "#", "ID", "NAME", "AUTHOR", "STYLE")
	for i, s := range p.Songs {
		t.Row(strconv.Itoa(i+1), s.ID, Truncate(s.Name, 40), Truncate(s.Author, 30), s.Style)
	}
	return t.Flush()
}

func UserTable(out io.Writer, users []*models.User) error {
	t := NewTable(out, "ID", "EMAIL", "NAME", "JOINED")
	for _, u := range users {
		t.Row(u.ID(), u.Email(), u.Name(), humanize.Time(u.CreatedAt()))
	}
	return t.Flush()
}

// CacheTable lists cached remote media with a total line.
func CacheTable(out io.Writer, entries []playback.CacheEntry) error {
	var total uint64
	t := NewTable(out, "KEY", "SIZE", "CACHED", "PATH")
	for _, e := range entries {
		total += uint64(e.Size)
		t.Row(e.Key, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime), e.Path)
	}
	if err := t.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%s, %s\n", pluralize(len(entries), "file"), humanize.Bytes(total))
	return err
}

// RecentTable lists recently played songs, newest first.
func RecentTable(out io.Writer, plays []models.RecentPlay) error {
	t := NewTable(out, "PLAYED", "NAME", "AUTHOR", "STYLE")
	for _, p := range plays {
		t.Row(humanize.Time(p.PlayedAt), Truncate(p.Song.Name, 40), Truncate(p.Song.Author, 30), p.Song.Style)
	}
	return t.Flush()
}

// FormatDuration renders d as m:ss, or h:mm:ss from an hour up.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Truncate shortens s to at most n runes, ending in an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
