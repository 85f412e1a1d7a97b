package models

import "testing"

func TestSong(t *testing.T) {
	base := Song{ID: "a", Name: "Blue", Author: "Joni", Source: "/music/blue.mp3", Style: "folk", PlayCount: 3}

	t.Run("Equal", func(t *testing.T) {
		tc := []struct {
			name  string
			other Song
			want  bool
		}{
			{name: "identical", other: base, want: true},
			{name: "different id and play count", other: Song{ID: "b", Name: "Blue", Author: "Joni", Source: "/music/blue.mp3", Style: "folk", PlayCount: 9}, want: true},
			{name: "different name", other: Song{Name: "Green", Author: "Joni", Source: "/music/blue.mp3", Style: "folk"}},
			{name: "different source", other: Song{Name: "Blue", Author: "Joni", Source: "/music/other.mp3", Style: "folk"}},
			{name: "different style", other: Song{Name: "Blue", Author: "Joni", Source: "/music/blue.mp3", Style: "jazz"}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := base.Equal(tt.other); got != tt.want {
					t.Errorf("Equal() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("IsRemote", func(t *testing.T) {
		tc := map[string]bool{
			"/music/blue.mp3":                false,
			"file:///music/blue.mp3":         false,
			"http://example.com/blue.mp3":    true,
			"HTTPS://example.com/a/blue.wav": true,
			"ftp://example.com/blue.mp3":     false,
		}
		for source, want := range tc {
			t.Run(source, func(t *testing.T) {
				if got := (Song{Source: source}).IsRemote(); got != want {
					t.Errorf("IsRemote(%q) = %v, want %v", source, got, want)
				}
			})
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := base.String(); got != "Blue - Joni" {
			t.Errorf("String() = %q", got)
		}
		if got := (Song{Name: "Untitled"}).String(); got != "Untitled" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestPlaylist(t *testing.T) {
	t.Run("Snapshot is independent", func(t *testing.T) {
		p := Playlist{Name: "Mix", Songs: []Song{{Name: "a"}, {Name: "b"}}}
		snap := p.Snapshot()

		p.Songs[0] = Song{Name: "changed"}
		p.Songs = append(p.Songs, Song{Name: "c"})

		if snap.Len() != 2 || snap.Songs[0].Name != "a" {
			t.Errorf("snapshot was affected by caller mutation: %+v", snap.Songs)
		}
	})

	t.Run("NewVirtualPlaylist", func(t *testing.T) {
		songs := []Song{{Name: "a"}}
		p := NewVirtualPlaylist(songs)

		if !p.IsVirtual() || p.Name != VirtualPlaylistName {
			t.Errorf("expected virtual playlist, got %+v", p)
		}

		songs[0].Name = "changed"
		if p.Songs[0].Name != "a" {
			t.Error("virtual playlist should copy its songs")
		}
	})

	t.Run("IsEmpty", func(t *testing.T) {
		if !(Playlist{}).IsEmpty() {
			t.Error("zero playlist should be empty")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("User", func(t *testing.T) {
		u := NewUser(1, "listener@example.com", "Listener")
		if err := u.Validate(); err == nil {
			t.Error("expected error without id")
		}
		u.SetID("u1")
		if err := u.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		u.SetEmail("not-an-email")
		if err := u.Validate(); err == nil {
			t.Error("expected error for malformed email")
		}
	})

	t.Run("PersistedSong", func(t *testing.T) {
		s := NewPersistedSong(1, Song{Name: "Blue"})
		s.SetID("s1")
		if err := s.Validate(); err == nil {
			t.Error("expected error without source")
		}

		s = NewPersistedSong(1, Song{ID: "ignored", Name: "Blue", Source: "/music/blue.mp3"})
		s.SetID("s1")
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if s.Song().ID != "s1" {
			t.Errorf("Song() should carry the row id, got %q", s.Song().ID)
		}
	})

	t.Run("PersistedPlaylist reserved name", func(t *testing.T) {
		p := NewPersistedPlaylist(1, "", VirtualPlaylistName, "")
		p.SetID("p1")
		if err := p.Validate(); err == nil {
			t.Error("expected reserved name to be rejected")
		}
	})
}
