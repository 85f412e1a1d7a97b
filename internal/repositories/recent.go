package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/phono/internal/models"
)

// DefaultRecentLimit bounds [RecentRepository.List] when no limit is given.
const DefaultRecentLimit = 20

// RecentRepository records playback starts and lists them newest first.
type RecentRepository struct {
	db *sql.DB
}

// NewRecentRepository creates a new RecentRepository with the given database connection
func NewRecentRepository(db *sql.DB) *RecentRepository {
	return &RecentRepository{db: db}
}

// Record stores one playback start. userID may be empty for anonymous sessions.
func (r *RecentRepository) Record(userID, songID string, at time.Time) error {
	_, err := r.db.Exec(
		"INSERT INTO recent_plays (user_id, song_id, played_at) VALUES (?, ?, ?)",
		nullable(userID), songID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to record recent play: %w", err)
	}
	return nil
}

// List returns the most recent plays of userID (anonymous plays when empty), newest first.
func (r *RecentRepository) List(userID string, limit int) ([]models.RecentPlay, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT COALESCE(rp.user_id, ''), s.id, s.name, s.author, s.source, s.style, s.play_count, rp.played_at
		FROM recent_plays rp
		JOIN songs s ON s.id = rp.song_id
		WHERE s.deleted_at IS NULL AND `
	args := []any{}
	if userID == "" {
		query += "rp.user_id IS NULL"
	} else {
		query += "rp.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY rp.played_at DESC, rp.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plays: %w", err)
	}
	defer rows.Close()

	var plays []models.RecentPlay
	for rows.Next() {
		var p models.RecentPlay
		s := &p.Song
		if err := rows.Scan(&p.UserID, &s.ID, &s.Name, &s.Author, &s.Source, &s.Style, &s.PlayCount, &p.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent play: %w", err)
		}
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return plays, nil
}
