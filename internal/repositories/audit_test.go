package repositories

import (
	"context"
	"database/sql"
	"testing"

	"tunesync/internal/shared"
	"tunesync/internal/tasks"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("full run lifecycle", func(t *testing.T) {
		audit := NewAuditLog(testDB(t))

		runID, err := audit.BeginRun(ctx, "Road Trip", 20, 18)
		if err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
		if runID == "" {
			t.Fatal("expected a run ID")
		}

		entries := []tasks.AuditEntry{
			{Kind: "add", Title: "Song A", Artist: "Artist A", Status: "executed"},
			{Kind: "playlist_remove", Title: "Song C", Status: "executed"},
			{Kind: "library_delete", Title: "Song C", Detail: "score 9", Status: "declined"},
		}
		for _, e := range entries {
			if err := audit.Record(ctx, runID, e); err != nil {
				t.Fatalf("Record failed: %v", err)
			}
		}

		if err := audit.EndRun(ctx, runID, "added 1/1, playlist removals 1, library deletions 0"); err != nil {
			t.Fatalf("EndRun failed: %v", err)
		}

		got, err := audit.RunActions(ctx, runID)
		if err != nil {
			t.Fatalf("RunActions failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 actions, got %d", len(got))
		}
		if got[0].Kind != "add" || got[0].Title != "Song A" {
			t.Errorf("unexpected first action: %+v", got[0])
		}
		if got[2].Status != "declined" || got[2].Detail != "score 9" {
			t.Errorf("unexpected third action: %+v", got[2])
		}
	})

	t.Run("EndRun on unknown run fails", func(t *testing.T) {
		audit := NewAuditLog(testDB(t))
		if err := audit.EndRun(ctx, "missing", "summary"); err == nil {
			t.Error("expected error for unknown run ID")
		}
	})

	t.Run("Runs lists newest first", func(t *testing.T) {
		audit := NewAuditLog(testDB(t))

		first, err := audit.BeginRun(ctx, "First", 1, 1)
		if err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
		second, err := audit.BeginRun(ctx, "Second", 2, 2)
		if err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
		if err := audit.EndRun(ctx, second, "done"); err != nil {
			t.Fatalf("EndRun failed: %v", err)
		}

		runs, err := audit.Runs(ctx, 10)
		if err != nil {
			t.Fatalf("Runs failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}

		var gotFirst, gotSecond *RunRecord
		for i := range runs {
			switch runs[i].ID {
			case first:
				gotFirst = &runs[i]
			case second:
				gotSecond = &runs[i]
			}
		}
		if gotFirst == nil || gotSecond == nil {
			t.Fatalf("expected both runs listed, got %+v", runs)
		}
		if gotFirst.FinishedAt != nil {
			t.Error("unfinished run must have nil FinishedAt")
		}
		if gotSecond.FinishedAt == nil || gotSecond.Summary != "done" {
			t.Errorf("finished run must carry summary and finish time: %+v", gotSecond)
		}
	})

	t.Run("limit bounds the listing", func(t *testing.T) {
		audit := NewAuditLog(testDB(t))
		for range 5 {
			if _, err := audit.BeginRun(ctx, "Playlist", 1, 1); err != nil {
				t.Fatalf("BeginRun failed: %v", err)
			}
		}

		runs, err := audit.Runs(ctx, 3)
		if err != nil {
			t.Fatalf("Runs failed: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})
}
