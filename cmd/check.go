package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"tunesync/internal/catalog"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// Check scans the library and probes it for one "Title - Artist" search term.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: expected a \"Title - Artist\" search term", shared.ErrMalformedInput)
	}

	r.writePlain("Scanning %s library...\n", r.local.Name())

	tracks, skipped, err := r.local.AllTracks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCollaborator, err)
	}

	library := catalog.New(tracks, skipped, r.config.Matching)
	r.writePlain("Library: %d tracks", library.Len())
	if n := len(library.Skipped()); n > 0 {
		r.writePlain(" (%d records skipped)", n)
	}
	r.writePlain("\n\n")

	if cmd.Bool("candidates") {
		return r.checkCandidates(library, term)
	}

	matches, err := library.FindBySearchTerm(term)
	if err != nil {
		if errors.Is(err, shared.ErrMalformedInput) {
			return err
		}
		return fmt.Errorf("library lookup failed: %w", err)
	}

	if len(matches) == 0 {
		return r.writePlain("✗ No library match for %q\n", term)
	}

	r.writePlain("✓ %d match(es) for %q:\n", len(matches), term)
	for i, cand := range matches {
		r.printCandidate(i+1, cand.Track, cand.Score)
	}

	return nil
}

// checkCandidates shows the scored match ranking instead of exact lookup.
func (r *Runner) checkCandidates(library *catalog.Catalog, term string) error {
	title, artist, found := strings.Cut(term, " - ")
	if !found {
		return fmt.Errorf("%w: expected \"Title - Artist\"", shared.ErrMalformedInput)
	}

	ref := services.Track{
		Title:  strings.TrimSpace(title),
		Artist: strings.TrimSpace(artist),
	}

	cands := library.AcceptedCandidates(ref)
	if len(cands) == 0 {
		return r.writePlain("✗ No candidates at or above threshold for %q\n", term)
	}

	r.writePlain("Candidates for %q:\n", term)
	for i, cand := range cands {
		r.printCandidate(i+1, cand.Track, cand.Score)
	}

	return nil
}

func (r *Runner) printCandidate(n int, track services.Track, score int) {
	r.writePlain("  %d. %s - %s", n, track.Title, track.Artist)
	if track.Album != "" {
		r.writePlain(" [%s]", track.Album)
	}
	if track.Duration > 0 {
		r.writePlain(" (%s)", shared.FormatDuration(track.Duration))
	}
	r.writePlain(" score=%d\n", score)
}
