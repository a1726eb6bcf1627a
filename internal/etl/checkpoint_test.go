package etl

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tracklake/internal/models"
	mocks "github.com/desertthunder/tracklake/internal/testing"
)

func TestWriteRawCheckpoint(t *testing.T) {
	dir := t.TempDir()

	result := &ExtractResult{
		Meta: models.PlaylistMeta{ID: "pl1", Name: "Playlist", Owner: "Owner"},
		Tracks: []models.RawTrack{
			{TrackID: "t1", TrackName: "One", TrackGenres: models.FlexListOf("pop")},
		},
	}

	path, err := WriteRawCheckpoint(dir, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mocks.AssertFileExists(t, path)
	if filepath.Base(path) != "raw_playlist_data.json" {
		t.Errorf("unexpected filename: %s", path)
	}

	var decoded struct {
		Meta   models.PlaylistMeta `json:"meta"`
		Tracks []models.RawTrack   `json:"tracks"`
	}
	if err := json.Unmarshal([]byte(mocks.MustReadFile(t, path)), &decoded); err != nil {
		t.Fatalf("checkpoint is not valid JSON: %v", err)
	}
	if decoded.Meta.Name != "Playlist" || len(decoded.Tracks) != 1 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestWriteCleanCheckpoint(t *testing.T) {
	dir := t.TempDir()

	records := Normalize([]models.RawTrack{
		{
			TrackID:          "t1",
			TrackName:        "One",
			TrackDurationMS:  1500,
			TrackGenres:      models.FlexListOf("pop", "rock"),
			AlbumReleaseDate: "2020-05-01",
		},
	})

	paths, err := WriteCleanCheckpoint(dir, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected CSV and JSON artifacts, got %v", paths)
	}
	for _, p := range paths {
		mocks.AssertFileExists(t, p)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatalf("failed to open CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one record", len(rows))
	}
	if rows[0][0] != "track_id" || rows[0][5] != "track_genres" {
		t.Errorf("unexpected headers: %v", rows[0])
	}
	if rows[1][5] != `["pop","rock"]` {
		t.Errorf("genres cell = %s, want JSON array", rows[1][5])
	}
	if rows[1][8] != "2020-05-01" {
		t.Errorf("release date cell = %s", rows[1][8])
	}

	var decoded []models.CanonicalTrack
	if err := json.Unmarshal([]byte(mocks.MustReadFile(t, paths[1])), &decoded); err != nil {
		t.Fatalf("JSON copy is not valid: %v", err)
	}
	if len(decoded) != 1 || decoded[0].TrackDurationSec != 1.5 {
		t.Errorf("JSON copy lost data: %+v", decoded)
	}
}

func TestWriteCleanCheckpointEmpty(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteCleanCheckpoint(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content := mocks.MustReadFile(t, paths[0])
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 1 {
		t.Errorf("empty batch should write headers only, got %d lines", len(lines))
	}
}
