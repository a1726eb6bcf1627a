// Package services defines the [SourceClient] interface for the upstream
// streaming API and implements it for Spotify.
//
// # SourceClient Interface
//
// The extraction layer depends only on SourceClient, so tests and alternate
// sources swap in without touching pipeline code.
//
// # Spotify Implementation
//
// [SpotifyClient] authenticates with the OAuth2 client credentials flow;
// the [oauth2] transport refreshes expired tokens transparently.
//
// Playlist items are fetched 100 at a time. The API's `next` URL acts as the
// opaque pagination cursor: an empty cursor requests the first page, an empty
// returned cursor signals the final page.
//
// Artist lookups pass through a [rate.Limiter] enforcing a minimum spacing of
// 100ms between calls. The limiter is a quota discipline, not an optimization;
// lookups stay serial.
//
// # Error Handling
//
// Typed errors from the shared package classify failures:
//   - [shared.ErrAuthFailed] : credential exchange rejected
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrPlaylistNotFound] : playlist ID did not resolve
//   - [shared.ErrArtistLookup] : single-artist fetch failed (recoverable)
//   - [shared.ErrAPIRequest] : any other HTTP failure
package services
