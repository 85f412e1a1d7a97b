package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

const songColumns = "id, sequence, name, author, source, style, play_count, created_at, updated_at, deleted_at"

// SongRepository implements models.Repository[*models.PersistedSong] for the song catalog.
//
// Sources are unique among live songs, so a locator identifies at most one song.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song with generated ID and sequence
func (r *SongRepository) Create(song *models.PersistedSong) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	song.SetID(shared.GenerateID())
	song.SetSequence(sequence)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO songs (id, sequence, name, author, source, style, play_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID(), sequence, song.Name(), song.Author(), song.Source(), song.Style(),
		song.PlayCount(), song.CreatedAt(), song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	row := r.db.QueryRow("SELECT "+songColumns+" FROM songs WHERE id = ? AND deleted_at IS NULL", id)
	return r.scan(row, id)
}

// GetBySource retrieves the live song with the given source locator
func (r *SongRepository) GetBySource(source string) (*models.PersistedSong, error) {
	row := r.db.QueryRow("SELECT "+songColumns+" FROM songs WHERE source = ? AND deleted_at IS NULL", source)
	return r.scan(row, source)
}

// Update modifies the descriptive fields of an existing song.
//
// The play count is owned by [SongRepository.IncrementPlayCount] and is not written here.
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE songs SET name = ?, author = ?, source = ?, style = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		song.Name(), song.Author(), song.Source(), song.Style(), now, song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return expectAffected(result, fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID()))
}

// IncrementPlayCount adds one play to the song and returns the new count.
func (r *SongRepository) IncrementPlayCount(id string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"UPDATE songs SET play_count = play_count + 1, updated_at = ? WHERE id = ? AND deleted_at IS NULL RETURNING play_count",
		time.Now(), id,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment play count: %w", err)
	}
	return count, nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return expectAffected(result, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id))
}

// List retrieves live songs matching the given criteria ordered by sequence.
//
// Supported criteria: "author", "style", "remote" (bool).
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL"
	args := []any{}

	if author, ok := criteria["author"].(string); ok && author != "" {
		query += " AND author = ?"
		args = append(args, author)
	}

	if style, ok := criteria["style"].(string); ok && style != "" {
		query += " AND style = ?"
		args = append(args, style)
	}

	if remote, ok := criteria["remote"].(bool); ok {
		clause := " AND (source LIKE 'http://%' OR source LIKE 'https://%')"
		if !remote {
			clause = " AND NOT (source LIKE 'http://%' OR source LIKE 'https://%')"
		}
		query += clause
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := r.scan(rows, "")
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// Songs returns the engine values for every live song.
func (r *SongRepository) Songs(criteria map[string]any) ([]models.Song, error) {
	persisted, err := r.List(criteria)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, len(persisted))
	for i, p := range persisted {
		songs[i] = p.Song()
	}
	return songs, nil
}

func (r *SongRepository) scan(s scanner, key string) (*models.PersistedSong, error) {
	var (
		id        string
		sequence  int
		value     models.Song
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := s.Scan(&id, &sequence, &value.Name, &value.Author, &value.Source, &value.Style, &value.PlayCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewPersistedSong(sequence, value)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}
	return song, nil
}
