package services

import (
	"context"

	"github.com/desertthunder/tracklake/internal/models"
)

// PageSize is the fixed playlist-items page size requested from the source.
const PageSize = 100

// PlaylistItem is one entry of a playlist-items page.
//
// Track is nil for deleted or regionally unavailable tracks; callers skip
// those entries rather than treating them as errors.
type PlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *TrackPayload `json:"track"`
}

// TrackPayload is the track object within a playlist item.
type TrackPayload struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	DurationMS int64        `json:"duration_ms"`
	Popularity *int         `json:"popularity"`
	Album      AlbumPayload `json:"album"`
	Artists    []ArtistRef  `json:"artists"`
}

// AlbumPayload is the album object within a track payload.
type AlbumPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate string  `json:"release_date"`
	Label       *string `json:"label"`
}

// ArtistRef is the slim artist reference carried on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SourceClient defines the upstream API surface the pipeline consumes:
// playlist metadata, cursor-paginated playlist items, and per-artist detail.
type SourceClient interface {
	// Authenticate exchanges configured credentials for an API session.
	// Returns an error wrapping shared.ErrAuthFailed if the exchange is rejected.
	Authenticate(ctx context.Context) error

	// PlaylistMeta resolves a playlist's display metadata.
	// Returns an error wrapping shared.ErrPlaylistNotFound for unknown IDs.
	PlaylistMeta(ctx context.Context, playlistID string) (*models.PlaylistMeta, error)

	// PlaylistItems fetches one page of playlist items.
	// An empty cursor requests the first page. The returned cursor is opaque;
	// empty means pagination is complete.
	PlaylistItems(ctx context.Context, playlistID, cursor string) ([]PlaylistItem, string, error)

	// ArtistGenres fetches the genre set for a single artist.
	// Implementations enforce a minimum inter-call delay to respect upstream quota.
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)

	// Name returns the name of the source (e.g., "Spotify")
	Name() string
}
