package tasks

import (
	"tunesync/internal/services"
)

// DiffResult is the coarse structural diff of two playlist snapshots.
//
// The comparison is intentionally exact, case-sensitive and unnormalized:
// titles that differ only by punctuation are surfaced here and must go
// through scored matching before being declared equivalent. ToAdd and
// ToRemove are disjoint, and together with the Common count they cover every
// distinct title seen in either snapshot.
type DiffResult struct {
	ToAdd    []services.Track // in source, absent from target's title set
	ToRemove []services.Track // in target, absent from source's title set
	Common   int              // distinct titles present in both
}

// Empty reports whether the two snapshots already agree on membership.
func (d DiffResult) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Diff computes set membership differences between a source and a target
// snapshot by verbatim title comparison. Each distinct title contributes at
// most one entry, keeping the first record seen for it in snapshot order.
func Diff(source, target *services.Snapshot) DiffResult {
	sourceTitles := titleSet(source)
	targetTitles := titleSet(target)

	var result DiffResult

	seen := map[string]bool{}
	for _, t := range source.Tracks {
		if seen[t.Title] {
			continue
		}
		seen[t.Title] = true

		if targetTitles[t.Title] {
			result.Common++
		} else {
			result.ToAdd = append(result.ToAdd, t)
		}
	}

	seen = map[string]bool{}
	for _, t := range target.Tracks {
		if seen[t.Title] || sourceTitles[t.Title] {
			seen[t.Title] = true
			continue
		}
		seen[t.Title] = true
		result.ToRemove = append(result.ToRemove, t)
	}

	return result
}

func titleSet(s *services.Snapshot) map[string]bool {
	set := make(map[string]bool, len(s.Tracks))
	for _, t := range s.Tracks {
		set[t.Title] = true
	}
	return set
}
