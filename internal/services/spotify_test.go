package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"golang.org/x/oauth2"
	"tunesync/internal/errs"
)

// stubTransport returns one fixed response for every request.
type stubTransport struct {
	response *http.Response
	err      error
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return s.response, s.err
}

// seqTransport returns queued responses in order, for pagination tests.
type seqTransport struct {
	responses []*http.Response
	calls     int
}

func (s *seqTransport) RoundTrip(*http.Request) (*http.Response, error) {
	if s.calls >= len(s.responses) {
		return nil, errors.New("no more queued responses")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test-client",
		"client_secret": "test-secret",
		"redirect_uri":  "http://localhost:8080/callback",
	}
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func authedService(t *testing.T, transport http.RoundTripper) *SpotifyService {
	t.Helper()
	svc, err := NewSpotifyService(testCredentials())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	svc.token = &oauth2.Token{AccessToken: "test-token"}
	svc.httpClient = &http.Client{Transport: transport}
	return svc
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("requires client id", func(t *testing.T) {
		creds := testCredentials()
		creds["client_id"] = ""
		if _, err := NewSpotifyService(creds); !errors.Is(err, errs.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("requires client secret", func(t *testing.T) {
		creds := testCredentials()
		delete(creds, "client_secret")
		if _, err := NewSpotifyService(creds); !errors.Is(err, errs.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("defaults redirect URI", func(t *testing.T) {
		creds := testCredentials()
		delete(creds, "redirect_uri")
		svc, err := NewSpotifyService(creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.config.RedirectURL == "" {
			t.Error("expected a default redirect URL")
		}
	})
}

func TestSpotifyAuthenticate(t *testing.T) {
	t.Run("missing token and code", func(t *testing.T) {
		svc, _ := NewSpotifyService(testCredentials())
		err := svc.Authenticate(context.Background(), map[string]string{})
		if !errors.Is(err, errs.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("stored token installs a client", func(t *testing.T) {
		svc, _ := NewSpotifyService(testCredentials())
		creds := map[string]string{
			"access_token":  "stored",
			"refresh_token": "refresh",
			"expiry":        "2030-01-02T15:04:05Z",
		}
		if err := svc.Authenticate(context.Background(), creds); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.token == nil || svc.token.AccessToken != "stored" {
			t.Errorf("expected stored token, got %+v", svc.token)
		}
		if svc.token.RefreshToken != "refresh" {
			t.Error("expected refresh token carried over")
		}
	})
}

func TestSpotifyRequiresAuthentication(t *testing.T) {
	svc, _ := NewSpotifyService(testCredentials())
	_, err := svc.UserProfile(context.Background())
	if !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSpotifyGetPlaylists(t *testing.T) {
	t.Run("drains pagination", func(t *testing.T) {
		page1 := `{"items":[{"id":"p1","name":"First","tracks":{"total":10}}],"total":2,"limit":50,"offset":0,"next":"https://api.spotify.com/v1/me/playlists?offset=50"}`
		page2 := `{"items":[{"id":"p2","name":"Second","tracks":{"total":5}}],"total":2,"limit":50,"offset":50,"next":null}`
		transport := &seqTransport{responses: []*http.Response{jsonResponse(page1), jsonResponse(page2)}}

		svc := authedService(t, transport)
		playlists, err := svc.GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(playlists) != 2 {
			t.Fatalf("expected both pages drained, got %d playlists", len(playlists))
		}
		if playlists[0].ID != "p1" || playlists[1].ID != "p2" {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
		if playlists[0].TrackCount != 10 {
			t.Errorf("expected track count 10, got %d", playlists[0].TrackCount)
		}
	})

	t.Run("API error status surfaces", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusTooManyRequests, Body: io.NopCloser(bytes.NewBufferString(""))}
		svc := authedService(t, &stubTransport{response: resp})

		_, err := svc.GetPlaylists(context.Background())
		if !errors.Is(err, errs.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestSpotifyExportPlaylist(t *testing.T) {
	details := `{"id":"p1","name":"Road Trip","description":"mix","public":true,"tracks":{"total":2}}`
	page1 := `{"items":[
		{"track":{"id":"t1","name":"Song A","artists":[{"name":"Artist A"},{"name":"Featured"}],"album":{"name":"Album"},"duration_ms":215500,"track_number":3,"disc_number":1,"uri":"spotify:track:t1"}}
	],"total":2,"limit":100,"offset":0,"next":"https://api.spotify.com/v1/playlists/p1/tracks?offset=100"}`
	page2 := `{"items":[
		{"track":{"id":"t2","name":"Song B","artists":[],"album":{"name":""},"duration_ms":0,"uri":""}}
	],"total":2,"limit":100,"offset":100,"next":null}`
	transport := &seqTransport{responses: []*http.Response{jsonResponse(details), jsonResponse(page1), jsonResponse(page2)}}

	svc := authedService(t, transport)
	snap, err := svc.ExportPlaylist(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Origin != OriginRemote {
		t.Errorf("expected remote origin, got %v", snap.Origin)
	}
	if snap.Playlist.Name != "Road Trip" {
		t.Errorf("expected the resolved playlist name carried into the snapshot, got %q", snap.Playlist.Name)
	}
	if snap.Playlist.TrackCount != 2 {
		t.Errorf("expected track count 2, got %d", snap.Playlist.TrackCount)
	}
	if len(snap.Tracks) != 2 {
		t.Fatalf("expected 2 tracks across pages, got %d", len(snap.Tracks))
	}

	first := snap.Tracks[0]
	if first.Title != "Song A" || first.Artist != "Artist A" {
		t.Errorf("expected first listed artist kept, got %+v", first)
	}
	if first.Duration != 215 {
		t.Errorf("expected duration in whole seconds, got %d", first.Duration)
	}
	if first.TrackNumber != 3 || first.DiscNumber != 1 {
		t.Errorf("expected positional metadata carried, got %+v", first)
	}

	second := snap.Tracks[1]
	if second.Artist != "" || second.Duration != 0 {
		t.Errorf("absent fields must stay zero, got %+v", second)
	}
}

func TestTrackURL(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"spotify:track:abc123", "https://open.spotify.com/track/abc123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TrackURL(tt.uri); got != tt.want {
			t.Errorf("TrackURL(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestGetAuthURL(t *testing.T) {
	svc, _ := NewSpotifyService(testCredentials())
	url := svc.GetAuthURL("state-token")
	if url == "" {
		t.Fatal("expected a non-empty auth URL")
	}
	for _, fragment := range []string{"state=state-token", "client_id=test-client"} {
		if !bytes.Contains([]byte(url), []byte(fragment)) {
			t.Errorf("auth URL missing %q: %s", fragment, url)
		}
	}
}
