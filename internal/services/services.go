// package services defines the narrow collaborator interfaces the sync core
// depends on: a remote streaming catalog (Spotify) and a local media-library
// catalog (Apple Music via the scripting bridge).
//
// The matching, diff and reconciliation core only ever sees these interfaces
// and the DTOs below; it never touches a concrete bridge type.
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Origin tags which side of the sync a snapshot was enumerated from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// RemoteSource is a streaming-service catalog that owns the source-of-truth
// playlist. Enumeration is paginated behind the interface and must be fully
// drained before a snapshot is returned.
type RemoteSource interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks, following
	// pagination cursors until exhausted.
	ExportPlaylist(ctx context.Context, playlistID string) (*Snapshot, error)

	// Name returns the service name (e.g. "Spotify").
	Name() string
}

// LocalSource is the local media-library catalog. Field access on individual
// records may fail (deleted or corrupt entries); implementations skip such
// records and report them as SkippedRecord diagnostics instead of aborting.
type LocalSource interface {
	// PlaylistNames returns the names of every user playlist in the library.
	PlaylistNames(ctx context.Context) ([]string, error)

	// ExportPlaylist enumerates a playlist by name. Titles are always
	// populated; richer metadata is included when the bridge exposes it.
	ExportPlaylist(ctx context.Context, name string) (*Snapshot, error)

	// AllTracks enumerates the full library, not just a playlist.
	AllTracks(ctx context.Context) ([]Track, []SkippedRecord, error)

	// DeleteTrack removes a track from the library by its persistent handle.
	DeleteTrack(ctx context.Context, track Track) error

	// RemoveFromPlaylist removes a track from a playlist by title. Playlist
	// membership and library existence are different systems; this call never
	// touches the library itself.
	RemoveFromPlaylist(ctx context.Context, playlist, title string) error

	// Name returns the service name (e.g. "Apple Music").
	Name() string
}

// OAuthService is a RemoteSource that authenticates through a browser-based
// OAuth2 authorization-code flow.
type OAuthService interface {
	RemoteSource

	// GetAuthURL returns the authorization URL the user should visit.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 config for callback code exchange.
	GetOAuthConfig() *oauth2.Config

	// UseToken installs a previously obtained token.
	UseToken(ctx context.Context, token *oauth2.Token)
}

// Adder inserts a track into a local playlist through an out-of-band helper.
// A failed add is reported, not retried.
type Adder interface {
	Add(ctx context.Context, title, playlist string) error
}

// Playlist represents a playlist from any service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Snapshot is a read-only, point-in-time enumeration of one playlist from one
// source. Snapshots from the two sources are never merged; they are compared
// structurally.
type Snapshot struct {
	Origin   Origin
	Playlist Playlist
	Tracks   []Track
}

// Track represents a track record from any source. Title is the only
// mandatory field; a zero value in any other field means the source did not
// supply it.
type Track struct {
	ID          string // persistent handle within the owning source
	Title       string
	Artist      string
	Album       string
	Duration    int // seconds
	TrackNumber int
	DiscNumber  int
	URI         string // remote sources only
}

// SkippedRecord is the per-record side channel of a catalog scan: a record
// the bridge could not read, with the reason it was excluded.
type SkippedRecord struct {
	Index  int
	Reason string
}
