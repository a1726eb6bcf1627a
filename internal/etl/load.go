package etl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/shared"
)

// trackColumns is the column list shared by the staging and permanent tables,
// in insert order.
const trackColumns = `playlist_id, track_id, track_name, track_duration_ms,
	track_duration_sec, track_popularity, track_genres, album_id, album_name,
	album_release_date, release_year, album_label, artist_ids, artist_names`

// Loader persists canonical records with stage-and-merge semantics.
//
// The connection handle is passed in explicitly and scoped to the pipeline
// invocation; the Loader holds no connection state of its own.
type Loader struct {
	logger *log.Logger
}

// NewLoader creates a Loader. A nil logger falls back to a default.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{logger: logger}
}

// Load merges records into playlist_tracks keyed on (playlist_id, track_id).
//
// Rows are staged into a uniquely named staging table, then merged with a
// single declared upsert: new keys insert, existing keys overwrite every
// mutable column (last-write-wins). The whole sequence runs in one
// transaction; a mid-batch failure rolls everything back. The staging table
// never outlives the call, success or failure.
//
// An empty batch is a logged no-op.
func (l *Loader) Load(ctx context.Context, db *sql.DB, playlistID string, records []models.CanonicalTrack) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidInput)
	}
	if len(records) == 0 {
		l.logger.Info("no records to load", "playlist", playlistID)
		return nil
	}

	for i, r := range records {
		if r.TrackID == "" {
			return fmt.Errorf("%w: record %d has an empty track id", shared.ErrInvalidInput, i)
		}
	}

	staging := "staging_tracks_" + shared.GenerateSuffix()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", shared.ErrPersistence, err)
	}
	// Rollback is a no-op after a successful commit. The staging table is
	// created inside the transaction, so rollback also disposes of it; the
	// explicit drop covers the committed path and any sink that persists
	// DDL across rollback. Rollback runs first so the drop never contends
	// with the open transaction for a connection.
	defer func() {
		tx.Rollback()
		db.ExecContext(ctx, "DROP TABLE IF EXISTS "+staging)
	}()

	if err := l.stage(ctx, tx, staging, playlistID, records); err != nil {
		return err
	}

	merge := fmt.Sprintf(`
		INSERT INTO playlist_tracks (%s)
		SELECT %s FROM %s WHERE true
		ON CONFLICT (playlist_id, track_id) DO UPDATE SET
			track_name = excluded.track_name,
			track_duration_ms = excluded.track_duration_ms,
			track_duration_sec = excluded.track_duration_sec,
			track_popularity = excluded.track_popularity,
			track_genres = excluded.track_genres,
			album_id = excluded.album_id,
			album_name = excluded.album_name,
			album_release_date = excluded.album_release_date,
			release_year = excluded.release_year,
			album_label = excluded.album_label,
			artist_ids = excluded.artist_ids,
			artist_names = excluded.artist_names,
			loaded_at = CURRENT_TIMESTAMP
	`, trackColumns, trackColumns, staging)

	if _, err := tx.ExecContext(ctx, merge); err != nil {
		return fmt.Errorf("%w: merge: %v", shared.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE "+staging); err != nil {
		return fmt.Errorf("%w: drop staging: %v", shared.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", shared.ErrPersistence, err)
	}

	l.logger.Info("load complete", "playlist", playlistID, "rows", len(records))
	return nil
}

// stage creates the staging table and inserts every record into it.
func (l *Loader) stage(ctx context.Context, tx *sql.Tx, staging, playlistID string, records []models.CanonicalTrack) error {
	create := fmt.Sprintf(`
		CREATE TABLE %s (
			playlist_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			track_name TEXT NOT NULL DEFAULT '',
			track_duration_ms INTEGER NOT NULL DEFAULT 0,
			track_duration_sec REAL NOT NULL DEFAULT 0,
			track_popularity INTEGER NOT NULL DEFAULT 0,
			track_genres TEXT NOT NULL DEFAULT '[]',
			album_id TEXT NOT NULL DEFAULT '',
			album_name TEXT NOT NULL DEFAULT 'Unknown',
			album_release_date TEXT,
			release_year INTEGER,
			album_label TEXT,
			artist_ids TEXT NOT NULL DEFAULT '[]',
			artist_names TEXT NOT NULL DEFAULT '[]'
		)
	`, staging)

	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("%w: create staging: %v", shared.ErrPersistence, err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		staging, trackColumns,
	)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("%w: prepare staging insert: %v", shared.ErrPersistence, err)
	}
	defer stmt.Close()

	for i, r := range records {
		genres, err := marshalList(r.TrackGenres)
		if err != nil {
			return fmt.Errorf("%w: record %d genres: %v", shared.ErrPersistence, i, err)
		}
		artistIDs, err := marshalList(r.ArtistIDs)
		if err != nil {
			return fmt.Errorf("%w: record %d artist ids: %v", shared.ErrPersistence, i, err)
		}
		artistNames, err := marshalList(r.ArtistNames)
		if err != nil {
			return fmt.Errorf("%w: record %d artist names: %v", shared.ErrPersistence, i, err)
		}

		var releaseDate any
		if r.AlbumReleaseDate != nil {
			releaseDate = r.AlbumReleaseDate.Format(time.DateOnly)
		}
		var releaseYear any
		if r.ReleaseYear != nil {
			releaseYear = *r.ReleaseYear
		}
		var label any
		if r.AlbumLabel != nil {
			label = *r.AlbumLabel
		}

		if _, err := stmt.ExecContext(ctx,
			playlistID,
			r.TrackID,
			r.TrackName,
			r.TrackDurationMS,
			r.TrackDurationSec,
			r.TrackPopularity,
			genres,
			r.AlbumID,
			r.AlbumName,
			releaseDate,
			releaseYear,
			label,
			artistIDs,
			artistNames,
		); err != nil {
			return fmt.Errorf("%w: stage record %d: %v", shared.ErrPersistence, i, err)
		}
	}

	return nil
}

// marshalList JSON-encodes a list column, mapping nil to the empty array.
func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
