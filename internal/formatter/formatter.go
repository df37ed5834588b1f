// package formatter renders reconciliation run results to various formats (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"tunesync/internal/services"
	"tunesync/internal/shared"
	"tunesync/internal/tasks"
)

// ReportToText renders a run result as a plain text report.
func ReportToText(result *tasks.RunResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.Playlist))
	buf.WriteString(fmt.Sprintf("Remote tracks: %d\n", len(result.Remote.Tracks)))
	buf.WriteString(fmt.Sprintf("Local tracks: %d\n", len(result.Local.Tracks)))
	buf.WriteString(fmt.Sprintf("Library scanned: %d tracks (%d skipped)\n", result.LibrarySize, len(result.LibrarySkipped)))
	buf.WriteString(fmt.Sprintf("In both playlists: %d titles\n\n", result.Diff.Common))

	if len(result.Plan.Adds) > 0 {
		buf.WriteString("Missing from local playlist:\n")
		for i, add := range result.Plan.Adds {
			status := "cannot satisfy automatically"
			if add.Satisfiable() {
				status = fmt.Sprintf("in library (%d match(es))", len(add.Candidates))
			} else if add.Err != nil {
				status = add.Err.Error()
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]", i+1, add.Track.Artist, add.Track.Title, status))
			if url := services.TrackURL(add.Track.URI); url != "" {
				buf.WriteString(" " + url)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	if len(result.Plan.Removes) > 0 {
		buf.WriteString("No longer in remote playlist:\n")
		for i, rem := range result.Plan.Removes {
			buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, rem.Track.Title, rem.State))
			for _, cand := range rem.Candidates {
				buf.WriteString(fmt.Sprintf("   score %d: %s - %s (%s) [%s]\n",
					cand.Score, cand.Track.Artist, cand.Track.Title, cand.Track.Album, shared.FormatDuration(cand.Track.Duration)))
			}
		}
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("Added: %d (failed %d)\n", len(result.Added), len(result.AddFailures)))
	buf.WriteString(fmt.Sprintf("Playlist removals: %d\n", result.PlaylistRemovals))
	buf.WriteString(fmt.Sprintf("Library deletions: %d (failed %d, skipped %d)\n",
		result.LibraryDeletions, len(result.DeleteFailures), len(result.SkippedRemovals)))

	return buf.Bytes()
}

// ReportToMarkdown renders a run result as a Markdown report.
func ReportToMarkdown(result *tasks.RunResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync report: %s\n\n", result.Playlist))
	buf.WriteString(fmt.Sprintf("**Remote tracks**: %d\n", len(result.Remote.Tracks)))
	buf.WriteString(fmt.Sprintf("**Local tracks**: %d\n", len(result.Local.Tracks)))
	buf.WriteString(fmt.Sprintf("**Library**: %d tracks scanned, %d skipped\n\n", result.LibrarySize, len(result.LibrarySkipped)))

	if len(result.Plan.Adds) > 0 {
		buf.WriteString("## To add\n\n")
		for _, add := range result.Plan.Adds {
			marker := "✗"
			if add.Satisfiable() {
				marker = "✓"
			}
			buf.WriteString(fmt.Sprintf("- %s %s - %s (%d candidate(s))\n", marker, add.Track.Artist, add.Track.Title, len(add.Candidates)))
		}
		buf.WriteString("\n")
	}

	if len(result.Plan.Removes) > 0 {
		buf.WriteString("## To remove\n\n")
		for _, rem := range result.Plan.Removes {
			buf.WriteString(fmt.Sprintf("- %s: %s\n", rem.Track.Title, rem.State))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Outcome\n\n")
	buf.WriteString(fmt.Sprintf("- Added: %d (failed %d)\n", len(result.Added), len(result.AddFailures)))
	buf.WriteString(fmt.Sprintf("- Playlist removals: %d\n", result.PlaylistRemovals))
	buf.WriteString(fmt.Sprintf("- Library deletions: %d (failed %d, skipped %d)\n",
		result.LibraryDeletions, len(result.DeleteFailures), len(result.SkippedRemovals)))

	return buf.Bytes()
}

// ReportToCSV renders the plan entries of a run result as CSV with columns:
// Section, Title, Artist, Album, Status, Candidates, Score
func ReportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section", "Title", "Artist", "Album", "Status", "Candidates", "Score"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, add := range result.Plan.Adds {
		status := "unsatisfiable"
		if add.Satisfiable() {
			status = "satisfiable"
		} else if add.Err != nil {
			status = "malformed"
		}
		record := []string{
			"add",
			add.Track.Title,
			add.Track.Artist,
			add.Track.Album,
			status,
			strconv.Itoa(len(add.Candidates)),
			"",
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, rem := range result.Plan.Removes {
		topScore := ""
		if len(rem.Candidates) > 0 {
			topScore = strconv.Itoa(rem.Candidates[0].Score)
		}
		record := []string{
			"remove",
			rem.Track.Title,
			rem.Track.Artist,
			rem.Track.Album,
			rem.State.String(),
			strconv.Itoa(len(rem.Candidates)),
			topScore,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
