package models

import (
	"net/url"
	"slices"
	"strings"
)

// VirtualPlaylistName is reserved for playlists built from an ad-hoc song list.
const VirtualPlaylistName = "__virtual__"

// Song is an immutable reference to a playable song.
//
// Identity is the descriptive fields (Name, Author, Source, Style). ID and
// PlayCount are catalog bookkeeping and are ignored by [Song.Equal] and by
// cache key hashing.
type Song struct {
	ID        string `hash:"ignore"`
	Name      string
	Author    string
	Source    string
	Style     string
	PlayCount int `hash:"ignore"`
}

// Equal reports whether s and other describe the same song.
func (s Song) Equal(other Song) bool {
	return s.Name == other.Name &&
		s.Author == other.Author &&
		s.Source == other.Source &&
		s.Style == other.Style
}

// IsRemote reports whether the source locator uses http or https.
func (s Song) IsRemote() bool {
	u, err := url.Parse(s.Source)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// String renders "Name - Author", or just Name when the author is unknown.
func (s Song) String() string {
	if s.Author == "" {
		return s.Name
	}
	return s.Name + " - " + s.Author
}

// Playlist is a named, ordered list of songs.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Songs       []Song
}

// Snapshot returns a copy whose song slice is independent of p.
func (p Playlist) Snapshot() Playlist {
	p.Songs = slices.Clone(p.Songs)
	return p
}

// Len returns the number of songs.
func (p Playlist) Len() int { return len(p.Songs) }

// IsEmpty reports whether the playlist has no songs.
func (p Playlist) IsEmpty() bool { return len(p.Songs) == 0 }

// IsVirtual reports whether p was built by [NewVirtualPlaylist].
func (p Playlist) IsVirtual() bool { return p.Name == VirtualPlaylistName && p.ID == "" }

// NewVirtualPlaylist wraps songs in an unregistered playlist with the reserved name.
func NewVirtualPlaylist(songs []Song) Playlist {
	return Playlist{Name: VirtualPlaylistName, Songs: slices.Clone(songs)}
}
