package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/tracklake/internal/shared"
)

func newTestClient(t *testing.T, handler http.Handler) (*SpotifyClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewSpotifyClient(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	client.SetBaseURL(srv.URL)
	client.SetHTTPClient(srv.Client())
	return client, srv
}

func TestNewSpotifyClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     shared.SpotifyConfig
		wantErr error
	}{
		{name: "valid", cfg: shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}},
		{name: "missing id", cfg: shared.SpotifyConfig{ClientSecret: "secret"}, wantErr: shared.ErrMissingCredentials},
		{name: "missing secret", cfg: shared.SpotifyConfig{ClientID: "id"}, wantErr: shared.ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpotifyClient(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePlaylistID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare id", input: "abc123", want: "abc123"},
		{name: "share url", input: "https://open.spotify.com/playlist/abc123?si=xyz", want: "abc123"},
		{name: "url without query", input: "https://open.spotify.com/playlist/abc123", want: "abc123"},
		{name: "surrounding whitespace", input: "  abc123  ", want: "abc123"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePlaylistID(tt.input); got != tt.want {
				t.Errorf("ResolvePlaylistID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpotifyClientRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated client is rejected", func(t *testing.T) {
		client, err := NewSpotifyClient(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := client.PlaylistMeta(ctx, "pl1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("playlist metadata", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/pl1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":   "pl1",
				"name": "Road Trip",
				"owner": map[string]any{
					"id":           "dana",
					"display_name": "Dana",
				},
			})
		}))

		meta, err := client.PlaylistMeta(ctx, "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Name != "Road Trip" || meta.Owner != "Dana" {
			t.Errorf("meta = %+v", meta)
		}
	})

	t.Run("missing playlist maps to not found", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))

		if _, err := client.PlaylistMeta(ctx, "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("server error maps to api request failure", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		if _, err := client.PlaylistMeta(ctx, "pl1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("items pagination follows next urls", func(t *testing.T) {
		var srv *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("offset") == "" {
				next := srv.URL + "/playlists/pl1/tracks?offset=100&limit=100"
				json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{
						{"track": map[string]any{"id": "t1", "name": "One"}},
					},
					"next": next,
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"track": map[string]any{"id": "t2", "name": "Two"}},
				},
				"next": nil,
			})
		})

		client, s := newTestClient(t, mux)
		srv = s

		items, next, err := client.PlaylistItems(ctx, "pl1", "")
		if err != nil {
			t.Fatalf("first page failed: %v", err)
		}
		if len(items) != 1 || items[0].Track.ID != "t1" {
			t.Fatalf("first page items = %+v", items)
		}
		if next == "" {
			t.Fatal("expected a next cursor")
		}

		items, next, err = client.PlaylistItems(ctx, "pl1", next)
		if err != nil {
			t.Fatalf("second page failed: %v", err)
		}
		if len(items) != 1 || items[0].Track.ID != "t2" {
			t.Fatalf("second page items = %+v", items)
		}
		if next != "" {
			t.Errorf("expected exhausted cursor, got %q", next)
		}
	})

	t.Run("artist genres", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"ar1","name":"A","genres":["pop","rock"]}`)
		}))

		genres, err := client.ArtistGenres(ctx, "ar1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(genres) != 2 || genres[0] != "pop" {
			t.Errorf("genres = %v", genres)
		}
	})

	t.Run("artist lookup failures wrap sentinel", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		if _, err := client.ArtistGenres(ctx, "ar1"); !errors.Is(err, shared.ErrArtistLookup) {
			t.Errorf("expected ErrArtistLookup, got %v", err)
		}
	})

	t.Run("artist lookups are paced", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"genres":[]}`)
		}))

		start := time.Now()
		for i := 0; i < 3; i++ {
			if _, err := client.ArtistGenres(ctx, "ar1"); err != nil {
				t.Fatalf("lookup %d failed: %v", i, err)
			}
		}
		if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
			t.Errorf("three lookups took %v, want at least 200ms of pacing", elapsed)
		}
	})
}
