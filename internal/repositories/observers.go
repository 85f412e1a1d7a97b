package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

// resolveSongID returns the catalog id for song, looking it up by source
// when the value was not loaded from the catalog.
func resolveSongID(songs *SongRepository, song models.Song) (string, error) {
	if song.ID != "" {
		return song.ID, nil
	}

	persisted, err := songs.GetBySource(song.Source)
	if err != nil {
		return "", err
	}
	return persisted.ID(), nil
}

// PlayStatsAdapter increments a song's play count when playback starts.
//
// Songs that are not in the catalog are ignored.
type PlayStatsAdapter struct {
	songs *SongRepository
}

// NewPlayStatsAdapter creates a new PlayStatsAdapter backed by repo
func NewPlayStatsAdapter(repo *SongRepository) *PlayStatsAdapter {
	return &PlayStatsAdapter{songs: repo}
}

// OnSongStarted increments the play counter for song.
func (a *PlayStatsAdapter) OnSongStarted(song models.Song) error {
	id, err := resolveSongID(a.songs, song)
	if errors.Is(err, shared.ErrSongNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := a.songs.IncrementPlayCount(id); err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return nil
}

// RecentActivityAdapter records started songs as recent plays of one user.
type RecentActivityAdapter struct {
	songs  *SongRepository
	recent *RecentRepository
	userID string
	now    func() time.Time
}

// NewRecentActivityAdapter creates an adapter recording plays for userID (empty for anonymous).
func NewRecentActivityAdapter(songs *SongRepository, recent *RecentRepository, userID string) *RecentActivityAdapter {
	return &RecentActivityAdapter{songs: songs, recent: recent, userID: userID, now: time.Now}
}

// OnSongStarted records song as recently played.
func (a *RecentActivityAdapter) OnSongStarted(song models.Song) error {
	id, err := resolveSongID(a.songs, song)
	if errors.Is(err, shared.ErrSongNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return a.recent.Record(a.userID, id, a.now())
}
