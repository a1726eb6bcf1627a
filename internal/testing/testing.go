// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/services"
)

// MockSourceClient is a configurable test double for [services.SourceClient].
//
// Pages are served in order; the returned cursor is "page:<n>" until the last
// page, which returns an empty cursor.
type MockSourceClient struct {
	Meta    *models.PlaylistMeta
	Pages   [][]services.PlaylistItem
	Genres  map[string][]string // artist ID → genres
	NameStr string

	AuthErr   error
	MetaErr   error
	PageErr   error
	GenreErrs map[string]error // per-artist lookup failures

	AuthCalls  int
	MetaCalls  int
	PageCalls  int
	GenreCalls []string // artist IDs in lookup order
}

func (m *MockSourceClient) Name() string {
	if m.NameStr == "" {
		return "mock"
	}
	return m.NameStr
}

func (m *MockSourceClient) Authenticate(ctx context.Context) error {
	m.AuthCalls++
	return m.AuthErr
}

func (m *MockSourceClient) PlaylistMeta(ctx context.Context, playlistID string) (*models.PlaylistMeta, error) {
	m.MetaCalls++
	if m.MetaErr != nil {
		return nil, m.MetaErr
	}
	if m.Meta != nil {
		return m.Meta, nil
	}
	return &models.PlaylistMeta{ID: playlistID, Name: "Mock Playlist", Owner: "Mock Owner"}, nil
}

func (m *MockSourceClient) PlaylistItems(ctx context.Context, playlistID, cursor string) ([]services.PlaylistItem, string, error) {
	m.PageCalls++
	if m.PageErr != nil {
		return nil, "", m.PageErr
	}

	idx := 0
	if cursor != "" {
		for i := range m.Pages {
			if cursor == pageCursor(i) {
				idx = i
				break
			}
		}
	}
	if idx >= len(m.Pages) {
		return nil, "", nil
	}

	next := ""
	if idx+1 < len(m.Pages) {
		next = pageCursor(idx + 1)
	}
	return m.Pages[idx], next, nil
}

func (m *MockSourceClient) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	m.GenreCalls = append(m.GenreCalls, artistID)
	if err, ok := m.GenreErrs[artistID]; ok {
		return nil, err
	}
	if genres, ok := m.Genres[artistID]; ok {
		return genres, nil
	}
	return []string{}, nil
}

func pageCursor(i int) string {
	return "page:" + string(rune('0'+i))
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	Response *http.Response
	Err      error
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.Response, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
