package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/shared"
)

// PlaylistRepository persists the playlist display entity.
//
// Rows are upserted after each successful load so the dashboard layer always
// reads the identity of the latest ingested dataset.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Upsert inserts or refreshes the playlist row keyed on playlist_id.
func (r *PlaylistRepository) Upsert(meta models.PlaylistMeta, trackCount int) error {
	if meta.ID == "" {
		return fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidInput)
	}

	_, err := r.db.Exec(`
		INSERT INTO playlists (playlist_id, name, owner, track_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (playlist_id) DO UPDATE SET
			name = excluded.name,
			owner = excluded.owner,
			track_count = excluded.track_count,
			updated_at = excluded.updated_at
	`, meta.ID, meta.Name, meta.Owner, trackCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(playlistID string) (*models.Playlist, error) {
	var p models.Playlist
	err := r.db.QueryRow(`
		SELECT playlist_id, name, owner, track_count, updated_at
		FROM playlists WHERE playlist_id = ?
	`, playlistID).Scan(&p.PlaylistID, &p.Name, &p.Owner, &p.TrackCount, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}

	return &p, nil
}

// List retrieves all playlists ordered by most recently updated.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	rows, err := r.db.Query(`
		SELECT playlist_id, name, owner, track_count, updated_at
		FROM playlists ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.PlaylistID, &p.Name, &p.Owner, &p.TrackCount, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}
