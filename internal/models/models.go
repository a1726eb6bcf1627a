package models

import "time"

// PlaylistMeta is the playlist identity resolved once at the start of extraction.
type PlaylistMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// PlaylistSummary is the result reported to the caller of a pipeline run.
type PlaylistSummary struct {
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"track_count"`
}

// RawTrack is one playlist item as assembled by the extractor.
//
// List-valued fields use [FlexStrings] because checkpointed raw data may
// round-trip through text; numeric fields that the source can omit are
// pointers so absence survives until normalization.
type RawTrack struct {
	TrackID          string      `json:"track_id"`
	TrackName        string      `json:"track_name"`
	TrackDurationMS  int64       `json:"track_duration_ms"`
	TrackPopularity  *int        `json:"track_popularity"`
	TrackGenres      FlexStrings `json:"track_genres"`
	AlbumID          string      `json:"album_id"`
	AlbumName        *string     `json:"album_name"`
	AlbumReleaseDate string      `json:"album_release_date"`
	AlbumLabel       *string     `json:"album_label"`
	ArtistIDs        FlexStrings `json:"artist_ids"`
	ArtistNames      FlexStrings `json:"artist_names"`
}

// CanonicalTrack is a track after every coercion and derivation rule has run.
//
// List fields are always materialized, never nil. ReleaseYear and
// AlbumReleaseDate are nil when the source date was missing or unparseable.
type CanonicalTrack struct {
	TrackID          string     `json:"track_id"`
	TrackName        string     `json:"track_name"`
	TrackDurationMS  int64      `json:"track_duration_ms"`
	TrackDurationSec float64    `json:"track_duration_sec"`
	TrackPopularity  int        `json:"track_popularity"`
	TrackGenres      []string   `json:"track_genres"`
	AlbumID          string     `json:"album_id"`
	AlbumName        string     `json:"album_name"`
	AlbumReleaseDate *time.Time `json:"album_release_date"`
	ReleaseYear      *int       `json:"release_year"`
	AlbumLabel       *string    `json:"album_label"`
	ArtistIDs        []string   `json:"artist_ids"`
	ArtistNames      []string   `json:"artist_names"`
}

// Playlist is the persisted playlist entity read back by the dashboard layer.
type Playlist struct {
	PlaylistID string    `json:"playlist_id"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	TrackCount int       `json:"track_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Run statuses for [PipelineRun].
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// PipelineRun records one pipeline invocation.
type PipelineRun struct {
	ID           string     `json:"id"`
	Sequence     int64      `json:"sequence"`
	PlaylistID   string     `json:"playlist_id"`
	PlaylistName string     `json:"playlist_name"`
	Status       string     `json:"status"`
	Stage        string     `json:"stage"`
	TrackCount   int        `json:"track_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
