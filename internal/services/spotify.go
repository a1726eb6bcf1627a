package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Minimum spacing between artist detail calls.
	artistLookupInterval = 100 * time.Millisecond
)

// Response types below follow
// https://developer.spotify.com/documentation/web-api/reference/

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// spotifyPlaylist is the subset of the playlist object the pipeline reads.
type spotifyPlaylist struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Owner spotifyOwner `json:"owner"`
}

// spotifyItemsPage is one page of the playlist-items endpoint.
type spotifyItemsPage struct {
	Items  []PlaylistItem `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Next   *string        `json:"next"`
}

// spotifyArtist is the subset of the artist object the pipeline reads.
type spotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// SpotifyClient implements [SourceClient] against the Spotify Web API.
//
// Uses the OAuth2 client credentials flow: no user session is involved, the
// pipeline reads public playlist data with app credentials only.
type SpotifyClient struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewSpotifyClient creates a Spotify client from app credentials.
func NewSpotifyClient(cfg shared.SpotifyConfig) (*SpotifyClient, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	return &SpotifyClient{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotifyTokenURL,
		},
		baseURL: spotifyBaseURL,
		limiter: rate.NewLimiter(rate.Every(artistLookupInterval), 1),
	}, nil
}

// SetBaseURL overrides the API base URL. Used by tests against httptest servers.
func (s *SpotifyClient) SetBaseURL(u string) {
	s.baseURL = u
}

// SetHTTPClient overrides the HTTP client, bypassing token acquisition.
func (s *SpotifyClient) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// Authenticate performs the client credentials token exchange.
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	if _, err := s.config.Token(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.httpClient = s.config.Client(ctx)
	return nil
}

// doRequest performs an authenticated GET against an absolute API URL and decodes the JSON response.
func (s *SpotifyClient) doRequest(ctx context.Context, apiURL string, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, apiURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// PlaylistMeta resolves the playlist's name and owner.
func (s *SpotifyClient) PlaylistMeta(ctx context.Context, playlistID string) (*models.PlaylistMeta, error) {
	endpoint := fmt.Sprintf("%s/playlists/%s?fields=id,name,owner(display_name)", s.baseURL, url.PathEscape(playlistID))

	var pl spotifyPlaylist
	if err := s.doRequest(ctx, endpoint, &pl); err != nil {
		return nil, err
	}

	return &models.PlaylistMeta{
		ID:    playlistID,
		Name:  pl.Name,
		Owner: pl.Owner.DisplayName,
	}, nil
}

// PlaylistItems fetches one page of up to [PageSize] items.
//
// The cursor is the API's `next` URL; an empty cursor fetches the first page.
func (s *SpotifyClient) PlaylistItems(ctx context.Context, playlistID, cursor string) ([]PlaylistItem, string, error) {
	apiURL := cursor
	if apiURL == "" {
		apiURL = fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&additional_types=track", s.baseURL, url.PathEscape(playlistID), PageSize)
	}

	var page spotifyItemsPage
	if err := s.doRequest(ctx, apiURL, &page); err != nil {
		return nil, "", err
	}

	next := ""
	if page.Next != nil {
		next = *page.Next
	}

	return page.Items, next, nil
}

// ArtistGenres fetches one artist's genre set, pacing calls through the limiter.
func (s *SpotifyClient) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArtistLookup, err)
	}

	endpoint := fmt.Sprintf("%s/artists/%s", s.baseURL, url.PathEscape(artistID))

	var artist spotifyArtist
	if err := s.doRequest(ctx, endpoint, &artist); err != nil {
		return nil, fmt.Errorf("%w: artist %s: %v", shared.ErrArtistLookup, artistID, err)
	}

	return artist.Genres, nil
}

// ResolvePlaylistID extracts a playlist ID from a share URL or returns the input unchanged.
//
// "https://open.spotify.com/playlist/abc123?si=xyz" → "abc123"
func ResolvePlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if idx := strings.LastIndex(input, "/"); idx >= 0 {
		input = input[idx+1:]
	}
	if idx := strings.Index(input, "?"); idx >= 0 {
		input = input[:idx]
	}

	return input
}
