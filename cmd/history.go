package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"tunesync/internal/shared"
)

// History reviews recorded reconciliation runs from the audit database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.audit == nil {
		return fmt.Errorf("%w: audit log not configured, run `setup` first", shared.ErrMissingConfig)
	}

	if runID := cmd.String("run"); runID != "" {
		return r.historyActions(ctx, runID)
	}

	runs, err := r.audit.Runs(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded runs\n")
	}

	for _, rec := range runs {
		r.writePlain("%s  %s  (%d remote / %d local)", rec.StartedAt.Format(time.DateTime), rec.Playlist, rec.RemoteTracks, rec.LocalTracks)
		if rec.FinishedAt == nil {
			r.writePlain("  [incomplete]")
		} else if rec.Summary != "" {
			r.writePlain("  %s", rec.Summary)
		}
		r.writePlain("\n  id: %s\n", rec.ID)
	}

	return nil
}

func (r *Runner) historyActions(ctx context.Context, runID string) error {
	entries, err := r.audit.RunActions(ctx, runID)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("No recorded actions for run %s\n", runID)
	}

	for _, e := range entries {
		r.writePlain("%-16s %-9s %s", e.Kind, e.Status, e.Title)
		if e.Artist != "" {
			r.writePlain(" - %s", e.Artist)
		}
		if e.Detail != "" {
			r.writePlain("  (%s)", e.Detail)
		}
		r.writePlain("\n")
	}

	return nil
}
