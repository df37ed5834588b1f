// package repositories provides the persistence layer for the
// destructive-action audit log.
//
// Every reconciliation run gets a row in `runs`, and every planned or
// executed destructive action (playlist removal, library deletion, add)
// gets a row in `actions`. The log is write-only history so deletion
// decisions stay auditable; the matching engine never reads it back.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tunesync/internal/shared"
	"tunesync/internal/tasks"
)

// AuditLog implements [tasks.Auditor] over a SQLite database.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog creates an AuditLog with the given database connection. The
// schema is expected to be migrated already (shared.RunMigrations).
func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

// BeginRun opens an audit record for one reconciliation run and returns its ID.
func (a *AuditLog) BeginRun(ctx context.Context, playlist string, remoteCount, localCount int) (string, error) {
	id := shared.GenerateID()

	query := `
		INSERT INTO runs (id, playlist, remote_tracks, local_tracks, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := a.db.ExecContext(ctx, query, id, playlist, remoteCount, localCount, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	return id, nil
}

// Record appends one action entry to a run.
func (a *AuditLog) Record(ctx context.Context, runID string, entry tasks.AuditEntry) error {
	query := `
		INSERT INTO actions (id, run_id, kind, title, artist, detail, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := a.db.ExecContext(ctx, query,
		shared.GenerateID(),
		runID,
		entry.Kind,
		entry.Title,
		entry.Artist,
		entry.Detail,
		entry.Status,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	return nil
}

// EndRun closes a run record with its outcome summary.
func (a *AuditLog) EndRun(ctx context.Context, runID, summary string) error {
	query := `UPDATE runs SET summary = ?, finished_at = ? WHERE id = ?`

	res, err := a.db.ExecContext(ctx, query, summary, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no run with id %s", runID)
	}

	return nil
}

// RunRecord summarizes one reconciliation run for post-run review.
type RunRecord struct {
	ID           string
	Playlist     string
	RemoteTracks int
	LocalTracks  int
	Summary      string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Runs lists the most recent runs, newest first.
func (a *AuditLog) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, playlist, remote_tracks, local_tracks, summary, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var summary sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Playlist, &rec.RemoteTracks, &rec.LocalTracks, &summary, &rec.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Summary = summary.String
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// RunActions lists the recorded actions for a run in insertion order, for
// post-run review from the CLI.
func (a *AuditLog) RunActions(ctx context.Context, runID string) ([]tasks.AuditEntry, error) {
	query := `
		SELECT kind, title, artist, detail, status
		FROM actions
		WHERE run_id = ?
		ORDER BY created_at, id
	`

	rows, err := a.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []tasks.AuditEntry
	for rows.Next() {
		var e tasks.AuditEntry
		var artist, detail sql.NullString
		if err := rows.Scan(&e.Kind, &e.Title, &artist, &detail, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		e.Artist = artist.String
		e.Detail = detail.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
