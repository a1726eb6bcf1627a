package etl

import (
	"time"

	"github.com/desertthunder/tracklake/internal/models"
)

// unknownAlbum substitutes a missing album name.
const unknownAlbum = "Unknown"

// releaseDateLayouts are the formats the source emits depending on
// release_date_precision (day, month, year).
var releaseDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// Normalize converts raw records into canonical ones.
//
// Pure and deterministic: no I/O, and normalizing already-normalized data is
// a no-op. Per-field anomalies (an unparseable date, malformed list text)
// degrade to safe defaults instead of failing the batch. An empty input
// yields an empty, non-nil output.
func Normalize(records []models.RawTrack) []models.CanonicalTrack {
	out := make([]models.CanonicalTrack, 0, len(records))
	for _, r := range records {
		out = append(out, normalizeRecord(r))
	}
	return out
}

// normalizeRecord applies every coercion and derivation rule to one record.
func normalizeRecord(r models.RawTrack) models.CanonicalTrack {
	c := models.CanonicalTrack{
		TrackID:    r.TrackID,
		TrackName:  r.TrackName,
		AlbumID:    r.AlbumID,
		AlbumLabel: r.AlbumLabel,
	}

	c.TrackDurationMS = r.TrackDurationMS
	if c.TrackDurationMS < 0 {
		c.TrackDurationMS = 0
	}
	c.TrackDurationSec = float64(c.TrackDurationMS) / 1000.0

	if r.TrackPopularity != nil {
		c.TrackPopularity = clampPopularity(*r.TrackPopularity)
	}

	if r.AlbumName != nil && *r.AlbumName != "" {
		c.AlbumName = *r.AlbumName
	} else {
		c.AlbumName = unknownAlbum
	}

	if d, ok := parseReleaseDate(r.AlbumReleaseDate); ok {
		year := d.Year()
		c.AlbumReleaseDate = &d
		c.ReleaseYear = &year
	}

	c.TrackGenres = r.TrackGenres.Strings()
	c.ArtistIDs = r.ArtistIDs.Strings()
	c.ArtistNames = r.ArtistNames.Strings()

	return c
}

// parseReleaseDate parses a source release date. A miss is a safe default,
// not an error: the caller leaves both date and year null.
func parseReleaseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseDateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func clampPopularity(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
