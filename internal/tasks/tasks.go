package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"tunesync/internal/catalog"
	"tunesync/internal/match"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// Prompter is the strategy object the engine invokes for confirmation gates
// and candidate menus, so the core stays testable without a terminal.
type Prompter interface {
	// ConfirmAdd gates inserting a track into the local playlist.
	ConfirmAdd(track services.Track, playlist string) bool

	// ConfirmRemove gates processing a to-remove entry at all. Declining
	// skips both the playlist removal and the library search.
	ConfirmRemove(track services.Track, playlist string) bool

	// ConfirmDelete gates the deletion of one concrete library track.
	ConfirmDelete(cand match.Candidate) bool

	// ChooseCandidates picks among multiple accepted deletion candidates.
	// Returned indices are 1-based into cands; an empty result skips the
	// entry.
	ChooseCandidates(track services.Track, cands []match.Candidate) []int
}

// Auditor records destructive decisions for post-run review. Implementations
// are write-only history: nothing recorded here feeds back into matching.
type Auditor interface {
	BeginRun(ctx context.Context, playlist string, remoteCount, localCount int) (runID string, err error)
	Record(ctx context.Context, runID string, entry AuditEntry) error
	EndRun(ctx context.Context, runID string, summary string) error
}

// AuditEntry describes one planned or executed action.
type AuditEntry struct {
	Kind   string // add | playlist_remove | library_delete
	Title  string
	Artist string
	Detail string
	Status string // planned | executed | failed | declined | skipped
}

// ActionError pairs a track with the collaborator failure that excluded it
// from the batch result.
type ActionError struct {
	Track services.Track
	Err   error
}

// RunOpts controls a reconciliation run.
type RunOpts struct {
	DryRun bool // stop after planning; no mutation is issued
}

// RunResult contains everything a run computed and applied.
type RunResult struct {
	Playlist string
	Remote   *services.Snapshot
	Local    *services.Snapshot

	Diff DiffResult
	Plan Plan

	// Library scan diagnostics (records the bridge could not read).
	LibrarySize    int
	LibrarySkipped []services.SkippedRecord

	// Apply outcomes; batch operations report partial success counts.
	Added            []services.Track
	AddFailures      []ActionError
	PlaylistRemovals int
	LibraryDeletions int
	DeleteFailures   []ActionError
	SkippedRemovals  []services.Track
}

// SyncEngine defines the reconciliation run against a named playlist that
// exists on both sources.
type SyncEngine interface {
	Run(ctx context.Context, progress chan<- ProgressUpdate, playlist string, opts RunOpts) (*RunResult, error)
}

// Engine implements SyncEngine over the collaborator interfaces.
type Engine struct {
	remote   services.RemoteSource
	local    services.LocalSource
	adder    services.Adder
	prompter Prompter
	audit    Auditor // optional
	weights  match.Weights
	logger   *log.Logger
}

// EngineOpts contains the dependencies for creating an Engine.
type EngineOpts struct {
	Remote   services.RemoteSource
	Local    services.LocalSource
	Adder    services.Adder
	Prompter Prompter
	Audit    Auditor
	Weights  match.Weights
	Logger   *log.Logger
}

// NewEngine creates an Engine with the provided collaborators. Weights fall
// back to the defaults and the logger to the shared stderr logger.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Weights == (match.Weights{}) {
		opts.Weights = match.DefaultWeights()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Engine{
		remote:   opts.Remote,
		local:    opts.Local,
		adder:    opts.Adder,
		prompter: opts.Prompter,
		audit:    opts.Audit,
		weights:  opts.Weights,
		logger:   opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full reconciliation of the named playlist: snapshot both
// sides, diff, plan against the full library, then apply the plan through
// the owning collaborators.
//
// Only the absence of a matching playlist on either side aborts the run;
// failures local to one catalog entry or one planned action are counted and
// carried in the result.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, playlist string, opts RunOpts) (*RunResult, error) {
	if e.remote == nil || e.local == nil {
		return nil, fmt.Errorf("%w: source not initialized", shared.ErrCollaborator)
	}

	result := &RunResult{Playlist: playlist}

	e.sendProgress(progress, fetchRemoteUpdate(1, 2, e.remote.Name()))
	remoteID, err := e.resolveRemotePlaylist(ctx, playlist)
	if err != nil {
		return nil, err
	}

	remoteSnap, err := e.remote.ExportPlaylist(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export remote playlist: %v", shared.ErrAPIRequest, err)
	}
	result.Remote = remoteSnap
	e.sendProgress(progress, foundPlaylistUpdate(1, 2, remoteSnap))

	e.sendProgress(progress, fetchLocalUpdate(2, 2, e.local.Name()))
	if err := e.requireLocalPlaylist(ctx, playlist); err != nil {
		return nil, err
	}

	localSnap, err := e.local.ExportPlaylist(ctx, playlist)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enumerate local playlist: %v", shared.ErrCollaborator, err)
	}
	result.Local = localSnap

	e.sendProgress(progress, scanLibraryUpdate(1, 1))
	libraryTracks, skipped, err := e.local.AllTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan library: %v", shared.ErrCollaborator, err)
	}
	library := catalog.New(libraryTracks, skipped, e.weights)
	result.LibrarySize = library.Len()
	result.LibrarySkipped = library.Skipped()
	for _, rec := range library.Skipped() {
		e.logger.Warn("skipped library record", "index", rec.Index, "reason", rec.Reason)
	}

	e.sendProgress(progress, compareUpdate(1, 1))
	result.Diff = Diff(remoteSnap, localSnap)

	e.sendProgress(progress, resolveUpdate(1, 1, len(result.Diff.ToAdd)+len(result.Diff.ToRemove)))
	planner := NewPlanner(library, e.logger)
	result.Plan = planner.Plan(result.Diff)

	if opts.DryRun {
		return result, nil
	}

	runID := e.beginAudit(ctx, playlist, len(remoteSnap.Tracks), len(localSnap.Tracks))

	e.applyAdds(ctx, progress, runID, playlist, result)
	e.applyRemovals(ctx, progress, runID, playlist, result)

	e.endAudit(ctx, runID, fmt.Sprintf(
		"added %d/%d, playlist removals %d, library deletions %d",
		len(result.Added), result.Plan.SatisfiableAdds(), result.PlaylistRemovals, result.LibraryDeletions,
	))

	return result, nil
}

// resolveRemotePlaylist maps a playlist name to a remote playlist ID by
// exact name equality. Multiple playlists sharing the name is a flagged
// correspondence gap; the first seen wins.
func (e *Engine) resolveRemotePlaylist(ctx context.Context, name string) (string, error) {
	playlists, err := e.remote.GetPlaylists(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to list remote playlists: %v", shared.ErrAPIRequest, err)
	}

	var id string
	matches := 0
	for _, pl := range playlists {
		if pl.Name == name {
			matches++
			if id == "" {
				id = pl.ID
			}
		}
	}

	if id == "" {
		return "", fmt.Errorf("%w: no remote playlist named %q", shared.ErrPlaylistNotFound, name)
	}
	if matches > 1 {
		e.logger.Warn("ambiguous playlist correspondence, using first", "name", name, "matches", matches)
	}

	return id, nil
}

// requireLocalPlaylist verifies the playlist correspondence on the local
// side by exact name equality.
func (e *Engine) requireLocalPlaylist(ctx context.Context, name string) error {
	names, err := e.local.PlaylistNames(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to list local playlists: %v", shared.ErrCollaborator, err)
	}

	for _, n := range names {
		if n == name {
			return nil
		}
	}

	return fmt.Errorf("%w: no local playlist named %q", shared.ErrPlaylistNotFound, name)
}

// applyAdds routes every confirmed, satisfiable add through the out-of-band
// playlist helper. A failed add is reported and counted, not retried.
func (e *Engine) applyAdds(ctx context.Context, progress chan<- ProgressUpdate, runID, playlist string, result *RunResult) {
	satisfiable := result.Plan.SatisfiableAdds()
	step := 0

	for _, add := range result.Plan.Adds {
		if !add.Satisfiable() {
			continue
		}
		step++
		e.sendProgress(progress, applyAddUpdate(step, satisfiable, add.Track))

		if e.prompter != nil && !e.prompter.ConfirmAdd(add.Track, playlist) {
			e.recordAudit(ctx, runID, AuditEntry{Kind: "add", Title: add.Track.Title, Artist: add.Track.Artist, Status: "declined"})
			continue
		}

		if e.adder == nil {
			e.recordAudit(ctx, runID, AuditEntry{Kind: "add", Title: add.Track.Title, Artist: add.Track.Artist, Status: "skipped", Detail: "no add helper configured"})
			continue
		}

		if err := e.adder.Add(ctx, add.Track.Title, playlist); err != nil {
			e.logger.Error("add helper failed", "title", add.Track.Title, "err", err)
			result.AddFailures = append(result.AddFailures, ActionError{Track: add.Track, Err: err})
			e.recordAudit(ctx, runID, AuditEntry{Kind: "add", Title: add.Track.Title, Artist: add.Track.Artist, Status: "failed", Detail: err.Error()})
			continue
		}

		result.Added = append(result.Added, add.Track)
		e.recordAudit(ctx, runID, AuditEntry{Kind: "add", Title: add.Track.Title, Artist: add.Track.Artist, Status: "executed"})
	}
}

// applyRemovals walks the per-item state machine: confirm, remove from
// playlist, then resolve the library deletion by match state. Playlist
// removal and library deletion are independent sequential steps; a failed
// deletion never rolls back the playlist removal.
func (e *Engine) applyRemovals(ctx context.Context, progress chan<- ProgressUpdate, runID, playlist string, result *RunResult) {
	total := len(result.Plan.Removes)

	for i, rem := range result.Plan.Removes {
		e.sendProgress(progress, applyRemoveUpdate(i+1, total, rem.Track))

		if e.prompter != nil && !e.prompter.ConfirmRemove(rem.Track, playlist) {
			result.SkippedRemovals = append(result.SkippedRemovals, rem.Track)
			e.recordAudit(ctx, runID, AuditEntry{Kind: "playlist_remove", Title: rem.Track.Title, Artist: rem.Track.Artist, Status: "declined"})
			continue
		}

		if err := e.local.RemoveFromPlaylist(ctx, playlist, rem.Track.Title); err != nil {
			e.logger.Error("playlist removal failed", "title", rem.Track.Title, "err", err)
			result.DeleteFailures = append(result.DeleteFailures, ActionError{Track: rem.Track, Err: err})
			e.recordAudit(ctx, runID, AuditEntry{Kind: "playlist_remove", Title: rem.Track.Title, Artist: rem.Track.Artist, Status: "failed", Detail: err.Error()})
		} else {
			result.PlaylistRemovals++
			e.recordAudit(ctx, runID, AuditEntry{Kind: "playlist_remove", Title: rem.Track.Title, Artist: rem.Track.Artist, Status: "executed"})
		}

		switch rem.State {
		case RemoveNoMatch:
			e.logger.Info("no library match for removed track", "title", rem.Track.Title)

		case RemoveSingleMatch:
			e.deleteCandidate(ctx, runID, rem.Track, rem.Candidates[0], result)

		case RemoveNeedsSelection:
			if e.prompter == nil {
				result.SkippedRemovals = append(result.SkippedRemovals, rem.Track)
				e.recordAudit(ctx, runID, AuditEntry{Kind: "library_delete", Title: rem.Track.Title, Artist: rem.Track.Artist, Status: "skipped", Detail: "multiple candidates, no selector"})
				continue
			}
			chosen := e.prompter.ChooseCandidates(rem.Track, rem.Candidates)
			if len(chosen) == 0 {
				result.SkippedRemovals = append(result.SkippedRemovals, rem.Track)
				e.recordAudit(ctx, runID, AuditEntry{Kind: "library_delete", Title: rem.Track.Title, Artist: rem.Track.Artist, Status: "skipped", Detail: "no candidate selected"})
				continue
			}
			for _, idx := range chosen {
				if idx < 1 || idx > len(rem.Candidates) {
					continue
				}
				e.deleteCandidate(ctx, runID, rem.Track, rem.Candidates[idx-1], result)
			}
		}
	}
}

// deleteCandidate applies the confirmation gate and issues the library
// deletion for one concrete candidate.
func (e *Engine) deleteCandidate(ctx context.Context, runID string, ref services.Track, cand match.Candidate, result *RunResult) {
	detail := fmt.Sprintf("score %d, album %q", cand.Score, cand.Track.Album)

	if e.prompter != nil && !e.prompter.ConfirmDelete(cand) {
		result.SkippedRemovals = append(result.SkippedRemovals, cand.Track)
		e.recordAudit(ctx, runID, AuditEntry{Kind: "library_delete", Title: cand.Track.Title, Artist: cand.Track.Artist, Status: "declined", Detail: detail})
		return
	}

	if err := e.local.DeleteTrack(ctx, cand.Track); err != nil {
		e.logger.Error("library deletion failed", "title", cand.Track.Title, "err", err)
		result.DeleteFailures = append(result.DeleteFailures, ActionError{Track: cand.Track, Err: err})
		e.recordAudit(ctx, runID, AuditEntry{Kind: "library_delete", Title: cand.Track.Title, Artist: cand.Track.Artist, Status: "failed", Detail: err.Error()})
		return
	}

	result.LibraryDeletions++
	e.recordAudit(ctx, runID, AuditEntry{Kind: "library_delete", Title: cand.Track.Title, Artist: cand.Track.Artist, Status: "executed", Detail: detail})
}

// Audit helpers tolerate a nil auditor and never let audit failures disturb
// the run.

func (e *Engine) beginAudit(ctx context.Context, playlist string, remote, local int) string {
	if e.audit == nil {
		return ""
	}
	id, err := e.audit.BeginRun(ctx, playlist, remote, local)
	if err != nil {
		e.logger.Warn("audit log unavailable", "err", err)
		return ""
	}
	return id
}

func (e *Engine) recordAudit(ctx context.Context, runID string, entry AuditEntry) {
	if e.audit == nil || runID == "" {
		return
	}
	if err := e.audit.Record(ctx, runID, entry); err != nil {
		e.logger.Warn("failed to record audit entry", "kind", entry.Kind, "err", err)
	}
}

func (e *Engine) endAudit(ctx context.Context, runID, summary string) {
	if e.audit == nil || runID == "" {
		return
	}
	if err := e.audit.EndRun(ctx, runID, summary); err != nil {
		e.logger.Warn("failed to finalize audit run", "err", err)
	}
}
