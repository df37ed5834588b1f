package tasks

import (
	"context"
	"errors"
	"testing"

	"tunesync/internal/services"
	"tunesync/internal/shared"
	tu "tunesync/internal/testing"
)

// engineFixture wires an engine over mocks for one named playlist.
//
// Remote playlist: Song A, Song B. Local playlist: Song B, Song C.
// Library: Song A (so the add is satisfiable) and one copy of Song C
// (so the removal resolves to a single deletion candidate).
func engineFixture() (*Engine, *tu.MockRemote, *tu.MockLocal, *tu.MockAdder, *tu.MockPrompter) {
	remote := &tu.MockRemote{
		Playlists: []services.Playlist{{ID: "pl1", Name: "Road Trip", TrackCount: 2}},
		Snapshots: map[string]*services.Snapshot{
			"pl1": {
				Origin:   services.OriginRemote,
				Playlist: services.Playlist{ID: "pl1", Name: "Road Trip"},
				Tracks: []services.Track{
					{Title: "Song A", Artist: "Artist A"},
					{Title: "Song B", Artist: "Artist B"},
				},
			},
		},
	}

	local := &tu.MockLocal{
		Names: []string{"Road Trip", "Other"},
		Snapshots: map[string]*services.Snapshot{
			"Road Trip": {
				Origin:   services.OriginLocal,
				Playlist: services.Playlist{Name: "Road Trip"},
				Tracks: []services.Track{
					{ID: "l1", Title: "Song B", Artist: "Artist B"},
					{ID: "l2", Title: "Song C", Artist: "Artist C"},
				},
			},
		},
		Library: []services.Track{
			{ID: "l3", Title: "Song A", Artist: "Artist A"},
			{ID: "l2", Title: "Song C", Artist: "Artist C"},
		},
	}

	adder := &tu.MockAdder{}
	prompter := &tu.MockPrompter{Adds: true, Removes: true, Deletes: true}

	engine := NewEngine(EngineOpts{
		Remote:   remote,
		Local:    local,
		Adder:    adder,
		Prompter: prompter,
		Logger:   shared.NewLogger(nil),
	})

	return engine, remote, local, adder, prompter
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("full reconciliation", func(t *testing.T) {
		engine, _, local, adder, _ := engineFixture()

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Diff.ToAdd) != 1 || result.Diff.ToAdd[0].Title != "Song A" {
			t.Errorf("expected diff to add Song A, got %v", result.Diff.ToAdd)
		}
		if len(result.Diff.ToRemove) != 1 || result.Diff.ToRemove[0].Title != "Song C" {
			t.Errorf("expected diff to remove Song C, got %v", result.Diff.ToRemove)
		}
		if result.Diff.Common != 1 {
			t.Errorf("expected 1 common title, got %d", result.Diff.Common)
		}

		if len(adder.Added) != 1 || adder.Added[0] != "Song A" {
			t.Errorf("expected Song A routed through add helper, got %v", adder.Added)
		}
		if len(local.RemovedTitles) != 1 || local.RemovedTitles[0] != "Song C" {
			t.Errorf("expected Song C removed from playlist, got %v", local.RemovedTitles)
		}
		if len(local.Deleted) != 1 || local.Deleted[0].ID != "l2" {
			t.Errorf("expected library deletion of l2, got %v", local.Deleted)
		}
		if result.PlaylistRemovals != 1 || result.LibraryDeletions != 1 {
			t.Errorf("expected counts 1/1, got %d/%d", result.PlaylistRemovals, result.LibraryDeletions)
		}
	})

	t.Run("dry run plans without applying", func(t *testing.T) {
		engine, _, local, adder, _ := engineFixture()

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{DryRun: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Plan.Adds) != 1 || len(result.Plan.Removes) != 1 {
			t.Errorf("expected a computed plan, got %+v", result.Plan)
		}
		if len(adder.Added) != 0 || len(local.Deleted) != 0 || len(local.RemovedTitles) != 0 {
			t.Error("dry run must not mutate anything")
		}
	})

	t.Run("missing remote playlist aborts", func(t *testing.T) {
		engine, remote, _, _, _ := engineFixture()
		remote.Playlists = nil

		_, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("missing local playlist aborts", func(t *testing.T) {
		engine, _, local, _, _ := engineFixture()
		local.Names = []string{"Other"}

		_, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("declined removal skips both steps", func(t *testing.T) {
		engine, _, local, _, prompter := engineFixture()
		prompter.Removes = false

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(local.RemovedTitles) != 0 || len(local.Deleted) != 0 {
			t.Error("declined removal must not touch playlist or library")
		}
		if len(result.SkippedRemovals) != 1 {
			t.Errorf("expected 1 skipped removal, got %d", len(result.SkippedRemovals))
		}
	})

	t.Run("declined deletion keeps playlist removal", func(t *testing.T) {
		engine, _, local, _, prompter := engineFixture()
		prompter.Deletes = false

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PlaylistRemovals != 1 {
			t.Errorf("expected playlist removal to proceed, got %d", result.PlaylistRemovals)
		}
		if len(local.Deleted) != 0 {
			t.Error("declined deletion must not delete from library")
		}
	})

	t.Run("failed add is counted not fatal", func(t *testing.T) {
		engine, _, _, adder, _ := engineFixture()
		adder.Err = errors.New("helper exploded")

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("batch op must not abort on one failure: %v", err)
		}

		if len(result.AddFailures) != 1 {
			t.Errorf("expected 1 add failure, got %d", len(result.AddFailures))
		}
		if len(result.Added) != 0 {
			t.Errorf("expected no successful adds, got %v", result.Added)
		}
	})

	t.Run("failed deletion never rolls back playlist removal", func(t *testing.T) {
		engine, _, local, _, _ := engineFixture()
		local.DeleteErr = errors.New("bridge refused")

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PlaylistRemovals != 1 {
			t.Errorf("expected playlist removal kept, got %d", result.PlaylistRemovals)
		}
		if result.LibraryDeletions != 0 || len(result.DeleteFailures) != 1 {
			t.Errorf("expected failed deletion counted, got %d deletions / %d failures",
				result.LibraryDeletions, len(result.DeleteFailures))
		}
	})

	t.Run("library scan diagnostics carried through", func(t *testing.T) {
		engine, _, local, _, _ := engineFixture()
		local.Skipped = []services.SkippedRecord{{Index: 7, Reason: "could not read"}}

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{DryRun: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.LibrarySkipped) != 1 {
			t.Errorf("expected 1 skipped record, got %d", len(result.LibrarySkipped))
		}
		if result.LibrarySize != 2 {
			t.Errorf("expected library size 2, got %d", result.LibrarySize)
		}
	})

	t.Run("progress updates delivered", func(t *testing.T) {
		engine, _, _, _, _ := engineFixture()

		progressCh := make(chan ProgressUpdate, 50)
		_, err := engine.Run(ctx, progressCh, "Road Trip", RunOpts{})
		close(progressCh)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var phases []Phase
		for update := range progressCh {
			phases = append(phases, update.Phase)
		}
		if len(phases) == 0 {
			t.Fatal("expected progress updates")
		}
		if phases[0] != FetchRemote {
			t.Errorf("expected first update in fetch-remote phase, got %v", phases[0])
		}
	})
}

func TestEngineAmbiguousCandidates(t *testing.T) {
	ctx := context.Background()
	engine, _, local, _, prompter := engineFixture()

	// Second library copy of Song C forces a selection.
	local.Library = append(local.Library, services.Track{ID: "l4", Title: "Song C", Artist: "Artist C"})

	t.Run("empty selection skips the entry", func(t *testing.T) {
		prompter.Selection = nil

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if prompter.ChooseCalls == 0 {
			t.Error("expected the candidate menu to be consulted")
		}
		if len(local.Deleted) != 0 {
			t.Errorf("no deletion without an explicit pick, got %v", local.Deleted)
		}
		if len(result.SkippedRemovals) != 1 {
			t.Errorf("expected the entry skipped, got %d", len(result.SkippedRemovals))
		}
	})

	t.Run("explicit selection deletes the chosen copies", func(t *testing.T) {
		engine, _, local, _, prompter := engineFixture()
		local.Library = append(local.Library, services.Track{ID: "l4", Title: "Song C", Artist: "Artist C"})
		prompter.Selection = []int{1, 2}

		result, err := engine.Run(ctx, nil, "Road Trip", RunOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(local.Deleted) != 2 {
			t.Errorf("expected both selected copies deleted, got %v", local.Deleted)
		}
		if result.LibraryDeletions != 2 {
			t.Errorf("expected 2 library deletions, got %d", result.LibraryDeletions)
		}
	})
}
