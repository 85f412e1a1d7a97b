package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// User is a listener. Recent plays are recorded against a user.
type User struct {
	record
	email string
	name  string
}

// NewUser creates a User with the given sequence, email and display name.
func NewUser(sequence int, email, name string) *User {
	return &User{record: newRecord(sequence), email: email, name: name}
}

func (u *User) Email() string         { return u.email }
func (u *User) Name() string          { return u.name }
func (u *User) SetEmail(email string) { u.email = email }
func (u *User) SetName(name string)   { u.name = name }

// Validate requires an id and a well-formed email.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.email) == "" {
		return fmt.Errorf("user email is required")
	}
	if _, err := mail.ParseAddress(u.email); err != nil {
		return fmt.Errorf("invalid user email %q: %w", u.email, err)
	}
	return nil
}

// PersistedSong is a catalog song row.
type PersistedSong struct {
	record
	song Song
}

// NewPersistedSong wraps song for storage. The song's ID is replaced on create.
func NewPersistedSong(sequence int, song Song) *PersistedSong {
	return &PersistedSong{record: newRecord(sequence), song: song}
}

func (s *PersistedSong) Name() string   { return s.song.Name }
func (s *PersistedSong) Author() string { return s.song.Author }
func (s *PersistedSong) Source() string { return s.song.Source }
func (s *PersistedSong) Style() string  { return s.song.Style }
func (s *PersistedSong) PlayCount() int { return s.song.PlayCount }

func (s *PersistedSong) SetPlayCount(n int) { s.song.PlayCount = n }
func (s *PersistedSong) SetName(name string) {
	s.song.Name = name
}

// Song returns the value handed to the playback engine.
func (s *PersistedSong) Song() Song {
	song := s.song
	song.ID = s.id
	return song
}

// Validate requires an id, a name and a source locator.
func (s *PersistedSong) Validate() error {
	if s.id == "" {
		return fmt.Errorf("song id is required")
	}
	if strings.TrimSpace(s.song.Name) == "" {
		return fmt.Errorf("song name is required")
	}
	if strings.TrimSpace(s.song.Source) == "" {
		return fmt.Errorf("song source is required")
	}
	return nil
}

// PersistedPlaylist is a playlist row. Songs are loaded separately.
type PersistedPlaylist struct {
	record
	userID      string
	name        string
	description string
	songCount   int
}

// NewPersistedPlaylist creates a playlist owned by userID (which may be empty).
func NewPersistedPlaylist(sequence int, userID, name, description string) *PersistedPlaylist {
	return &PersistedPlaylist{
		record:      newRecord(sequence),
		userID:      userID,
		name:        name,
		description: description,
	}
}

func (p *PersistedPlaylist) UserID() string      { return p.userID }
func (p *PersistedPlaylist) Name() string        { return p.name }
func (p *PersistedPlaylist) Description() string { return p.description }
func (p *PersistedPlaylist) SongCount() int      { return p.songCount }

func (p *PersistedPlaylist) SetName(name string)        { p.name = name }
func (p *PersistedPlaylist) SetDescription(desc string) { p.description = desc }
func (p *PersistedPlaylist) SetSongCount(n int)         { p.songCount = n }

// Validate requires an id and a name other than the reserved virtual name.
func (p *PersistedPlaylist) Validate() error {
	if p.id == "" {
		return fmt.Errorf("playlist id is required")
	}
	if strings.TrimSpace(p.name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.name == VirtualPlaylistName {
		return fmt.Errorf("playlist name %q is reserved", VirtualPlaylistName)
	}
	return nil
}

// Playlist builds the engine value from the row and its ordered songs.
func (p *PersistedPlaylist) Playlist(songs []Song) Playlist {
	return Playlist{ID: p.id, Name: p.name, Description: p.description, Songs: songs}
}

// RecentPlay is one successful playback start.
type RecentPlay struct {
	UserID   string
	Song     Song
	PlayedAt time.Time
}
