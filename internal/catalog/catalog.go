// package catalog provides read-only, in-memory views over a scanned track
// collection from one source.
//
// A Catalog never mutates the underlying collection; mutation is always
// routed back through the owning collaborator. Records the bridge could not
// read arrive as diagnostics and stay visible on the catalog rather than
// being silently discarded.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"tunesync/internal/match"
	"tunesync/internal/services"
	"tunesync/internal/shared"
)

// searchTermSeparator splits a composite "<title> - <artist>" search key.
const searchTermSeparator = " - "

// Catalog wraps a collaborator-provided, unordered collection of tracks.
type Catalog struct {
	tracks  []services.Track
	weights match.Weights
	skipped []services.SkippedRecord
}

// New builds a catalog over tracks under the given scoring weights. Records
// without a title cannot participate in matching and are folded into the
// skipped diagnostics alongside any diagnostics the scan itself produced.
func New(tracks []services.Track, skipped []services.SkippedRecord, weights match.Weights) *Catalog {
	c := &Catalog{
		tracks:  make([]services.Track, 0, len(tracks)),
		weights: weights,
		skipped: skipped,
	}

	for i, t := range tracks {
		if strings.TrimSpace(t.Title) == "" {
			c.skipped = append(c.skipped, services.SkippedRecord{Index: i, Reason: "record has no title"})
			continue
		}
		c.tracks = append(c.tracks, t)
	}

	return c
}

// Len returns the number of scannable tracks in the catalog.
func (c *Catalog) Len() int { return len(c.tracks) }

// Skipped returns the diagnostics for records excluded from scans.
func (c *Catalog) Skipped() []services.SkippedRecord { return c.skipped }

// FindBySearchTerm scans the full catalog for entries matching a composite
// "<title> - <artist>" key. The strict pass (case-fold equality on both
// fields) runs first; only when it yields nothing does the normalized pass
// run. Entries must match on both fields to be returned.
//
// A term without the " - " separator is malformed and yields no candidates.
func (c *Catalog) FindBySearchTerm(term string) ([]match.Candidate, error) {
	title, artist, ok := strings.Cut(term, searchTermSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: search term %q is missing the %q separator", shared.ErrMalformedInput, term, searchTermSeparator)
	}
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	ref := services.Track{Title: title, Artist: artist}

	var out []match.Candidate
	for _, t := range c.tracks {
		if match.StringsMatch(t.Title, title, match.Strict) && match.StringsMatch(t.Artist, artist, match.Strict) {
			cand, _ := match.ScoreTrack(t, ref, c.weights)
			out = append(out, cand)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	for _, t := range c.tracks {
		if match.StringsMatch(t.Title, title, match.Normalized) && match.StringsMatch(t.Artist, artist, match.Normalized) {
			cand, _ := match.ScoreTrack(t, ref, c.weights)
			out = append(out, cand)
		}
	}

	return out, nil
}

// FindCandidates scans the full catalog, scoring every entry against the
// reference record. Entries whose title fails both match levels are rejected
// outright. Results are sorted by score, then strict-title, then
// strict-artist, with catalog scan order breaking remaining ties.
func (c *Catalog) FindCandidates(ref services.Track) []match.Candidate {
	var out []match.Candidate
	for _, t := range c.tracks {
		if cand, ok := match.ScoreTrack(t, ref, c.weights); ok {
			out = append(out, cand)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return match.Less(out[i], out[j]) })
	return out
}

// AcceptedCandidates is FindCandidates filtered to candidates whose score
// meets the acceptance threshold.
func (c *Catalog) AcceptedCandidates(ref services.Track) []match.Candidate {
	all := c.FindCandidates(ref)
	out := all[:0:0]
	for _, cand := range all {
		if cand.Accepted(c.weights) {
			out = append(out, cand)
		}
	}
	return out
}
