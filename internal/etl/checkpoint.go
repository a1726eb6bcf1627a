package etl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/tracklake/internal/models"
)

// Checkpoint artifact filenames within the data directory.
const (
	rawCheckpointFile   = "raw_playlist_data.json"
	cleanCheckpointCSV  = "cleaned_playlist_data.csv"
	cleanCheckpointJSON = "cleaned_playlist_data.json"
)

// WriteRawCheckpoint persists the raw extract as JSON in dataDir.
func WriteRawCheckpoint(dataDir string, result *ExtractResult) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	payload := struct {
		Meta   models.PlaylistMeta `json:"meta"`
		Tracks []models.RawTrack   `json:"tracks"`
	}{Meta: result.Meta, Tracks: result.Tracks}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal raw checkpoint: %w", err)
	}

	path := filepath.Join(dataDir, rawCheckpointFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write raw checkpoint: %w", err)
	}

	return path, nil
}

// WriteCleanCheckpoint persists the cleaned records as CSV plus a JSON
// analytics copy in dataDir. List columns are JSON-encoded inside the CSV.
func WriteCleanCheckpoint(dataDir string, records []models.CanonicalTrack) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	csvPath := filepath.Join(dataDir, cleanCheckpointCSV)
	if err := writeCleanCSV(csvPath, records); err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(dataDir, cleanCheckpointJSON)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clean checkpoint: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write clean checkpoint: %w", err)
	}

	return []string{csvPath, jsonPath}, nil
}

func writeCleanCSV(path string, records []models.CanonicalTrack) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV checkpoint: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	headers := []string{
		"track_id", "track_name", "track_duration_ms", "track_duration_sec",
		"track_popularity", "track_genres", "album_id", "album_name",
		"album_release_date", "release_year", "album_label",
		"artist_ids", "artist_names",
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		genres, _ := marshalList(r.TrackGenres)
		artistIDs, _ := marshalList(r.ArtistIDs)
		artistNames, _ := marshalList(r.ArtistNames)

		releaseDate := ""
		if r.AlbumReleaseDate != nil {
			releaseDate = r.AlbumReleaseDate.Format(time.DateOnly)
		}
		releaseYear := ""
		if r.ReleaseYear != nil {
			releaseYear = strconv.Itoa(*r.ReleaseYear)
		}
		label := ""
		if r.AlbumLabel != nil {
			label = *r.AlbumLabel
		}

		record := []string{
			r.TrackID,
			r.TrackName,
			strconv.FormatInt(r.TrackDurationMS, 10),
			strconv.FormatFloat(r.TrackDurationSec, 'f', -1, 64),
			strconv.Itoa(r.TrackPopularity),
			genres,
			r.AlbumID,
			r.AlbumName,
			releaseDate,
			releaseYear,
			label,
			artistIDs,
			artistNames,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}
