package etl

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/tracklake/internal/services"
	"github.com/desertthunder/tracklake/internal/shared"
	mocks "github.com/desertthunder/tracklake/internal/testing"
)

func item(id, name string, artists ...services.ArtistRef) services.PlaylistItem {
	return services.PlaylistItem{
		Track: &services.TrackPayload{
			ID:      id,
			Name:    name,
			Artists: artists,
		},
	}
}

func TestExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("empty playlist id rejected", func(t *testing.T) {
		e := NewExtractor(&mocks.MockSourceClient{}, nil)
		_, err := e.Extract(ctx, "")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("metadata failure propagates", func(t *testing.T) {
		client := &mocks.MockSourceClient{MetaErr: shared.ErrPlaylistNotFound}
		e := NewExtractor(client, nil)
		_, err := e.Extract(ctx, "pl1")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("paginates until cursor is exhausted", func(t *testing.T) {
		client := &mocks.MockSourceClient{
			Pages: [][]services.PlaylistItem{
				{item("t1", "One"), item("t2", "Two"), item("t3", "Three")},
				{item("t4", "Four")},
			},
		}
		e := NewExtractor(client, nil)

		result, err := e.Extract(ctx, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Tracks) != 4 {
			t.Errorf("tracks = %d, want 4", len(result.Tracks))
		}
		if result.Pages != 2 {
			t.Errorf("pages = %d, want 2", result.Pages)
		}
		if client.PageCalls != 2 {
			t.Errorf("page calls = %d, want 2", client.PageCalls)
		}
		if result.Tracks[3].TrackID != "t4" {
			t.Errorf("arrival order broken, last track = %s", result.Tracks[3].TrackID)
		}
	})

	t.Run("null track payloads are skipped", func(t *testing.T) {
		client := &mocks.MockSourceClient{
			Pages: [][]services.PlaylistItem{
				{{Track: nil}, item("t1", "One")},
			},
		}
		e := NewExtractor(client, nil)

		result, err := e.Extract(ctx, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Tracks) != 1 {
			t.Fatalf("tracks = %d, want 1", len(result.Tracks))
		}
		if result.Tracks[0].TrackID != "t1" {
			t.Errorf("retained track = %s, want t1", result.Tracks[0].TrackID)
		}
	})

	t.Run("genres are unioned across artists and sorted", func(t *testing.T) {
		client := &mocks.MockSourceClient{
			Pages: [][]services.PlaylistItem{
				{item("t1", "One",
					services.ArtistRef{ID: "ar1", Name: "A"},
					services.ArtistRef{ID: "ar2", Name: "B"},
				)},
			},
			Genres: map[string][]string{
				"ar1": {"rock", "pop"},
				"ar2": {"pop", "ambient"},
			},
		}
		e := NewExtractor(client, nil)

		result, err := e.Extract(ctx, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"ambient", "pop", "rock"}
		if got := result.Tracks[0].TrackGenres.Strings(); !reflect.DeepEqual(got, want) {
			t.Errorf("genres = %v, want %v", got, want)
		}
	})

	t.Run("artist lookups are cached per run", func(t *testing.T) {
		client := &mocks.MockSourceClient{
			Pages: [][]services.PlaylistItem{
				{
					item("t1", "One", services.ArtistRef{ID: "ar1", Name: "A"}),
					item("t2", "Two", services.ArtistRef{ID: "ar1", Name: "A"}),
				},
			},
			Genres: map[string][]string{"ar1": {"pop"}},
		}
		e := NewExtractor(client, nil)

		if _, err := e.Extract(ctx, "pl1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.GenreCalls) != 1 {
			t.Errorf("genre calls = %v, want one lookup for ar1", client.GenreCalls)
		}
	})

	t.Run("failed lookup contributes empty set and counts", func(t *testing.T) {
		client := &mocks.MockSourceClient{
			Pages: [][]services.PlaylistItem{
				{item("t1", "One",
					services.ArtistRef{ID: "bad", Name: "A"},
					services.ArtistRef{ID: "ar2", Name: "B"},
				)},
			},
			Genres:    map[string][]string{"ar2": {"jazz"}},
			GenreErrs: map[string]error{"bad": shared.ErrArtistLookup},
		}
		e := NewExtractor(client, nil)

		result, err := e.Extract(ctx, "pl1")
		if err != nil {
			t.Fatalf("lookup failure must not abort extraction: %v", err)
		}
		if result.GenreLookupFailures != 1 {
			t.Errorf("failures = %d, want 1", result.GenreLookupFailures)
		}
		if got := result.Tracks[0].TrackGenres.Strings(); !reflect.DeepEqual(got, []string{"jazz"}) {
			t.Errorf("genres = %v, want [jazz] from the surviving artist", got)
		}
	})

	t.Run("page failure aborts", func(t *testing.T) {
		client := &mocks.MockSourceClient{PageErr: shared.ErrAPIRequest}
		e := NewExtractor(client, nil)
		if _, err := e.Extract(ctx, "pl1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
