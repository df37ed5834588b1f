// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"

	"tunesync/internal/match"
	"tunesync/internal/services"
)

// MockRemote is a configurable test double for [services.RemoteSource].
type MockRemote struct {
	Playlists []services.Playlist
	Snapshots map[string]*services.Snapshot

	AuthenticateErr error
	GetPlaylistsErr error
	ExportErr       error
}

func (m *MockRemote) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthenticateErr
}

func (m *MockRemote) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	return m.Playlists, m.GetPlaylistsErr
}

func (m *MockRemote) ExportPlaylist(ctx context.Context, playlistID string) (*services.Snapshot, error) {
	if m.ExportErr != nil {
		return nil, m.ExportErr
	}
	if snap, ok := m.Snapshots[playlistID]; ok {
		return snap, nil
	}
	return nil, errors.New("no such playlist")
}

func (m *MockRemote) Name() string { return "mock remote" }

// MockLocal is a configurable test double for [services.LocalSource].
type MockLocal struct {
	Names     []string
	Snapshots map[string]*services.Snapshot
	Library   []services.Track
	Skipped   []services.SkippedRecord

	Deleted        []services.Track
	RemovedTitles  []string
	DeleteErr      error
	RemoveErr      error
	AllTracksErr   error
	PlaylistsErr   error
	ExportErrByKey map[string]error
}

func (m *MockLocal) PlaylistNames(ctx context.Context) ([]string, error) {
	return m.Names, m.PlaylistsErr
}

func (m *MockLocal) ExportPlaylist(ctx context.Context, name string) (*services.Snapshot, error) {
	if err, ok := m.ExportErrByKey[name]; ok {
		return nil, err
	}
	if snap, ok := m.Snapshots[name]; ok {
		return snap, nil
	}
	return nil, errors.New("no such playlist")
}

func (m *MockLocal) AllTracks(ctx context.Context) ([]services.Track, []services.SkippedRecord, error) {
	return m.Library, m.Skipped, m.AllTracksErr
}

func (m *MockLocal) DeleteTrack(ctx context.Context, track services.Track) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, track)
	return nil
}

func (m *MockLocal) RemoveFromPlaylist(ctx context.Context, playlist, title string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.RemovedTitles = append(m.RemovedTitles, title)
	return nil
}

func (m *MockLocal) Name() string { return "mock local" }

// MockAdder records the titles routed through the add helper.
type MockAdder struct {
	Added []string
	Err   error
}

func (m *MockAdder) Add(ctx context.Context, title, playlist string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Added = append(m.Added, title)
	return nil
}

// MockPrompter answers confirmation gates from preset fields.
type MockPrompter struct {
	Adds      bool
	Removes   bool
	Deletes   bool
	Selection []int

	ChooseCalls int
}

func (m *MockPrompter) ConfirmAdd(track services.Track, playlist string) bool    { return m.Adds }
func (m *MockPrompter) ConfirmRemove(track services.Track, playlist string) bool { return m.Removes }
func (m *MockPrompter) ConfirmDelete(cand match.Candidate) bool                  { return m.Deletes }

func (m *MockPrompter) ChooseCandidates(track services.Track, cands []match.Candidate) []int {
	m.ChooseCalls++
	return m.Selection
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
