package etl

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/services"
	"github.com/desertthunder/tracklake/internal/shared"
)

// ExtractResult carries everything the extraction stage produced.
type ExtractResult struct {
	Meta   models.PlaylistMeta // Resolved playlist identity
	Tracks []models.RawTrack   // One record per retained playlist item, arrival order
	Pages  int                 // Pages fetched
	// GenreLookupFailures counts best-effort artist lookups that failed and
	// contributed an empty genre set.
	GenreLookupFailures int
}

// Extractor drives a [services.SourceClient] across playlist pages.
type Extractor struct {
	client services.SourceClient
	logger *log.Logger
}

// NewExtractor creates an Extractor. A nil logger falls back to a default.
func NewExtractor(client services.SourceClient, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{client: client, logger: logger}
}

// Extract fetches the playlist's metadata and every page of its items.
//
// Items whose track payload is null (deleted or regionally unavailable) are
// skipped, not errors. Genre sets are unioned across each track's artists;
// a failed artist lookup contributes an empty set and bumps the failure
// counter rather than aborting the page.
func (e *Extractor) Extract(ctx context.Context, playlistID string) (*ExtractResult, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidInput)
	}

	meta, err := e.client.PlaylistMeta(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist %s: %w", playlistID, err)
	}

	result := &ExtractResult{Meta: *meta}
	genreCache := make(map[string][]string)

	cursor := ""
	for {
		items, next, err := e.client.PlaylistItems(ctx, playlistID, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		for _, item := range items {
			if item.Track == nil {
				e.logger.Debug("skipping unavailable track", "playlist", playlistID)
				continue
			}
			result.Tracks = append(result.Tracks, e.buildRecord(ctx, item.Track, genreCache, result))
		}

		if next == "" {
			break
		}
		cursor = next
	}

	e.logger.Info("extraction complete",
		"playlist", meta.Name,
		"tracks", len(result.Tracks),
		"pages", result.Pages,
		"genre_lookup_failures", result.GenreLookupFailures,
	)

	return result, nil
}

// buildRecord assembles one RawTrack, resolving the track's genre union.
func (e *Extractor) buildRecord(ctx context.Context, track *services.TrackPayload, genreCache map[string][]string, result *ExtractResult) models.RawTrack {
	artistIDs := make([]string, 0, len(track.Artists))
	artistNames := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artistIDs = append(artistIDs, a.ID)
		artistNames = append(artistNames, a.Name)
	}

	genreSet := make(map[string]struct{})
	for _, aid := range artistIDs {
		genres, ok := genreCache[aid]
		if !ok {
			var err error
			genres, err = e.client.ArtistGenres(ctx, aid)
			if err != nil {
				e.logger.Warn("genre lookup failed", "artist", aid, "err", err)
				result.GenreLookupFailures++
				genres = nil
			}
			genreCache[aid] = genres
		}
		for _, g := range genres {
			genreSet[g] = struct{}{}
		}
	}

	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	var albumName *string
	if track.Album.Name != "" {
		albumName = &track.Album.Name
	}

	return models.RawTrack{
		TrackID:          track.ID,
		TrackName:        track.Name,
		TrackDurationMS:  track.DurationMS,
		TrackPopularity:  track.Popularity,
		TrackGenres:      models.FlexListOf(genres...),
		AlbumID:          track.Album.ID,
		AlbumName:        albumName,
		AlbumReleaseDate: track.Album.ReleaseDate,
		AlbumLabel:       track.Album.Label,
		ArtistIDs:        models.FlexListOf(artistIDs...),
		ArtistNames:      models.FlexListOf(artistNames...),
	}
}
