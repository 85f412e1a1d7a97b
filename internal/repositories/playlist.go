package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

const playlistColumns = `p.id, p.sequence, COALESCE(p.user_id, ''), p.name, p.description,
	(SELECT COUNT(*) FROM playlist_songs ps JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = p.id AND s.deleted_at IS NULL),
	p.created_at, p.updated_at, p.deleted_at`

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist].
//
// It also owns playlist membership and builds the [models.Playlist] values the player loads.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.SetID(shared.GenerateID())
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO playlists (id, sequence, user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playlist.ID(), sequence, nullable(playlist.UserID()), playlist.Name(), playlist.Description(),
		playlist.CreatedAt(), playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	row := r.db.QueryRow("SELECT "+playlistColumns+" FROM playlists p WHERE p.id = ? AND p.deleted_at IS NULL", id)
	return r.scan(row, id)
}

// Update modifies an existing playlist's name and description
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	result, err := r.db.Exec(
		"UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		playlist.Name(), playlist.Description(), now, playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return expectAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID()))
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return expectAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists.
//
// Supported criteria: "user_id".
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists p WHERE p.deleted_at IS NULL"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND p.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY p.sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scan(rows, "")
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// AddSong appends songID to the end of the playlist.
func (r *PlaylistRepository) AddSong(playlistID, songID string) error {
	if _, err := r.Get(playlistID); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		INSERT INTO playlist_songs (playlist_id, song_id, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`,
		playlistID, songID, playlistID,
	)
	if err != nil {
		return fmt.Errorf("failed to add song to playlist: %w", err)
	}
	return nil
}

// RemoveSong removes every occurrence of songID from the playlist.
func (r *PlaylistRepository) RemoveSong(playlistID, songID string) error {
	result, err := r.db.Exec("DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?", playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove song from playlist: %w", err)
	}
	return expectAffected(result, fmt.Errorf("%w: %s in playlist %s", shared.ErrSongNotFound, songID, playlistID))
}

// Songs returns the live songs of a playlist in order.
func (r *PlaylistRepository) Songs(playlistID string) ([]models.Song, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.name, s.author, s.source, s.style, s.play_count
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = ? AND s.deleted_at IS NULL
		ORDER BY ps.position ASC, ps.id ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Name, &s.Author, &s.Source, &s.Style, &s.PlayCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// Snapshot loads a playlist with its songs, ready to hand to the player.
func (r *PlaylistRepository) Snapshot(playlistID string) (models.Playlist, error) {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return models.Playlist{}, err
	}

	songs, err := r.Songs(playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	return playlist.Playlist(songs), nil
}

func (r *PlaylistRepository) scan(s scanner, key string) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		userID      string
		name        string
		description string
		songCount   int
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &userID, &name, &description, &songCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, userID, name, description)
	playlist.SetID(id)
	playlist.SetSongCount(songCount)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}
	return playlist, nil
}
