// Apple Music implementation of [LocalSource]
//
// Talks to Music.app through osascript running JXA snippets that emit JSON.
// The library is assumed inconsistent at the margins (deleted or corrupt
// entries), so every per-record read inside a scan is individually guarded
// and failures surface as SkippedRecord diagnostics instead of aborting.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"tunesync/internal/errs"
)

const defaultOsascriptBin = "/usr/bin/osascript"

// ScriptRunner executes a JXA script and returns its stdout. Implemented by
// the osascript binary in production and by fakes in tests.
type ScriptRunner interface {
	Run(ctx context.Context, script string) ([]byte, error)
}

// OsascriptRunner runs scripts through the osascript binary.
type OsascriptRunner struct {
	Bin string
}

func (r OsascriptRunner) Run(ctx context.Context, script string) ([]byte, error) {
	bin := r.Bin
	if bin == "" {
		bin = defaultOsascriptBin
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-l", "JavaScript", "-e", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: osascript: %v (%s)", errs.ErrCollaborator, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return bytes.TrimSpace(stdout.Bytes()), nil
}

// appleTrack mirrors the JSON a scan script emits per record. A null entry
// in the scanned array marks a record whose fields could not be read.
type appleTrack struct {
	PersistentID string `json:"persistentId"`
	Name         string `json:"name"`
	Artist       string `json:"artist"`
	Album        string `json:"album"`
	Duration     int    `json:"duration"`
	TrackNumber  int    `json:"trackNumber"`
	DiscNumber   int    `json:"discNumber"`
}

func (t appleTrack) toTrack() Track {
	return Track{
		ID:          t.PersistentID,
		Title:       t.Name,
		Artist:      t.Artist,
		Album:       t.Album,
		Duration:    t.Duration,
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.DiscNumber,
	}
}

// trackScanScript reads every track of the given collection expression,
// guarding each record so one unreadable entry never aborts the scan.
const trackScanScript = `
const music = Application("Music");
const out = [];
for (const t of %s) {
	try {
		out.push({
			persistentId: t.persistentID(),
			name: t.name(),
			artist: t.artist(),
			album: t.album(),
			duration: Math.round(t.duration() || 0),
			trackNumber: t.trackNumber() || 0,
			discNumber: t.discNumber() || 0,
		});
	} catch (e) {
		out.push(null);
	}
}
JSON.stringify(out)`

// AppleMusicService implements the LocalSource interface over a ScriptRunner.
type AppleMusicService struct {
	runner ScriptRunner
}

// NewAppleMusicService creates a new Apple Music bridge using the given
// osascript binary path ("" for the system default).
func NewAppleMusicService(bin string) *AppleMusicService {
	return &AppleMusicService{runner: OsascriptRunner{Bin: bin}}
}

// NewAppleMusicServiceWithRunner creates a bridge over a custom runner.
func NewAppleMusicServiceWithRunner(runner ScriptRunner) *AppleMusicService {
	return &AppleMusicService{runner: runner}
}

func (a *AppleMusicService) Name() string {
	return "Apple Music"
}

// PlaylistNames returns the names of every user playlist in the library.
func (a *AppleMusicService) PlaylistNames(ctx context.Context) ([]string, error) {
	out, err := a.runner.Run(ctx, `JSON.stringify(Application("Music").userPlaylists().map(p => p.name()))`)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(out, &names); err != nil {
		return nil, fmt.Errorf("%w: bad playlist listing: %v", errs.ErrCollaborator, err)
	}

	return names, nil
}

// ExportPlaylist enumerates a playlist by name with whatever metadata the
// bridge exposes per track.
func (a *AppleMusicService) ExportPlaylist(ctx context.Context, name string) (*Snapshot, error) {
	collection := fmt.Sprintf(`music.playlists[%s].tracks()`, strconv.Quote(name))

	tracks, _, err := a.scanTracks(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate playlist %q: %w", name, err)
	}

	return &Snapshot{
		Origin:   OriginLocal,
		Playlist: Playlist{Name: name, TrackCount: len(tracks)},
		Tracks:   tracks,
	}, nil
}

// AllTracks enumerates the full library, not just a playlist.
func (a *AppleMusicService) AllTracks(ctx context.Context) ([]Track, []SkippedRecord, error) {
	return a.scanTracks(ctx, `music.tracks()`)
}

func (a *AppleMusicService) scanTracks(ctx context.Context, collection string) ([]Track, []SkippedRecord, error) {
	out, err := a.runner.Run(ctx, fmt.Sprintf(trackScanScript, collection))
	if err != nil {
		return nil, nil, err
	}

	var raw []*appleTrack
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: bad track listing: %v", errs.ErrCollaborator, err)
	}

	tracks := make([]Track, 0, len(raw))
	var skipped []SkippedRecord
	for i, t := range raw {
		if t == nil {
			skipped = append(skipped, SkippedRecord{Index: i, Reason: "record fields unreadable"})
			continue
		}
		tracks = append(tracks, t.toTrack())
	}

	return tracks, skipped, nil
}

// DeleteTrack removes a track from the library by its persistent ID.
func (a *AppleMusicService) DeleteTrack(ctx context.Context, track Track) error {
	if track.ID == "" {
		return fmt.Errorf("%w: track %q has no persistent ID", errs.ErrTrackNotFound, track.Title)
	}

	script := fmt.Sprintf(`
const music = Application("Music");
const matches = music.tracks.whose({persistentID: %s})();
if (matches.length === 0) { throw new Error("no track with that ID"); }
music.delete(matches[0]);
"ok"`, strconv.Quote(track.ID))

	if _, err := a.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to delete track %q: %w", track.Title, err)
	}

	return nil
}

// RemoveFromPlaylist removes a track from a playlist by title. The library
// copy of the track is untouched.
func (a *AppleMusicService) RemoveFromPlaylist(ctx context.Context, playlist, title string) error {
	script := fmt.Sprintf(`
const music = Application("Music");
const pl = music.playlists[%s];
const matches = pl.tracks.whose({name: %s})();
if (matches.length === 0) { throw new Error("track not in playlist"); }
music.delete(matches[0]);
"ok"`, strconv.Quote(playlist), strconv.Quote(title))

	if _, err := a.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to remove %q from playlist %q: %w", title, playlist, err)
	}

	return nil
}
