package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"tunesync/internal/services"
	"tunesync/internal/shared"
	tu "tunesync/internal/testing"
)

// syncTestRunner wires a runner over mocks for one named playlist. Remote:
// Song A, Song B. Local playlist: Song B, Song C. Library: Song A and one
// copy of Song C, so the run has one satisfiable add and one single-match
// removal.
func syncTestRunner(out *bytes.Buffer) *Runner {
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
		Names: []string{"Road Trip"},
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

	return NewRunner(RunnerOpts{
		Remote: remote,
		Local:  local,
		Adder:  &tu.MockAdder{},
		Output: out,
		Input:  strings.NewReader(""),
	})
}

func TestSyncFlushesProgressBeforeReport(t *testing.T) {
	out := &bytes.Buffer{}
	runner := syncTestRunner(out)

	app := &cli.Command{Name: "tunesync", Commands: runner.register()}
	if err := app.Run(context.Background(), []string{"tunesync", "sync", "--yes", "Road Trip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	reportAt := strings.Index(output, "Playlist: Road Trip")
	if reportAt == -1 {
		t.Fatalf("expected a report in the output:\n%s", output)
	}

	lastProgress := strings.LastIndex(output, "→ ")
	if lastProgress == -1 {
		t.Fatal("expected progress lines in the output")
	}
	if lastProgress > reportAt {
		t.Errorf("all progress output must be flushed before the report:\n%s", output)
	}
}

func TestSyncRequiresPlaylistArgument(t *testing.T) {
	out := &bytes.Buffer{}
	runner := syncTestRunner(out)

	app := &cli.Command{Name: "tunesync", Commands: runner.register()}
	err := app.Run(context.Background(), []string{"tunesync", "sync"})
	if !errors.Is(err, shared.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}
