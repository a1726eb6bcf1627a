package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tracklake/internal/models"
)

// TrackRepository reads persisted canonical tracks back out of the sink.
//
// Writes go through the loader's staging merge, never through this type.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// ListByPlaylist retrieves every canonical track persisted for a playlist.
func (r *TrackRepository) ListByPlaylist(playlistID string) ([]models.CanonicalTrack, error) {
	rows, err := r.db.Query(`
		SELECT track_id, track_name, track_duration_ms, track_duration_sec,
			track_popularity, track_genres, album_id, album_name,
			album_release_date, release_year, album_label, artist_ids, artist_names
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY track_name
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.CanonicalTrack
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

// CountByPlaylist returns the number of persisted rows for a playlist.
func (r *TrackRepository) CountByPlaylist(playlistID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?", playlistID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// scanTrack maps one playlist_tracks row, decoding the JSON list columns.
func scanTrack(rows *sql.Rows) (models.CanonicalTrack, error) {
	var t models.CanonicalTrack
	var genres, artistIDs, artistNames string
	var releaseDate sql.NullString
	var releaseYear sql.NullInt64
	var label sql.NullString

	if err := rows.Scan(
		&t.TrackID, &t.TrackName, &t.TrackDurationMS, &t.TrackDurationSec,
		&t.TrackPopularity, &genres, &t.AlbumID, &t.AlbumName,
		&releaseDate, &releaseYear, &label, &artistIDs, &artistNames,
	); err != nil {
		return t, fmt.Errorf("failed to scan track: %w", err)
	}

	if err := decodeList(genres, &t.TrackGenres); err != nil {
		return t, err
	}
	if err := decodeList(artistIDs, &t.ArtistIDs); err != nil {
		return t, err
	}
	if err := decodeList(artistNames, &t.ArtistNames); err != nil {
		return t, err
	}

	if releaseDate.Valid {
		if d, err := time.Parse(time.DateOnly, releaseDate.String); err == nil {
			t.AlbumReleaseDate = &d
		}
	}
	if releaseYear.Valid {
		year := int(releaseYear.Int64)
		t.ReleaseYear = &year
	}
	if label.Valid {
		t.AlbumLabel = &label.String
	}

	return t, nil
}

func decodeList(encoded string, target *[]string) error {
	if encoded == "" {
		*target = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), target); err != nil {
		return fmt.Errorf("failed to decode list column: %w", err)
	}
	if *target == nil {
		*target = []string{}
	}
	return nil
}
