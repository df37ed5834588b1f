package tasks

import (
	"fmt"

	"github.com/charmbracelet/log"
	"tunesync/internal/catalog"
	"tunesync/internal/match"
	"tunesync/internal/services"
)

// RemoveState classifies a to-remove entry after the library-wide candidate
// search.
type RemoveState int

const (
	// RemoveNoMatch means no accepted candidate exists; no deletion is
	// possible automatically.
	RemoveNoMatch RemoveState = iota
	// RemoveSingleMatch means exactly one accepted candidate exists; it is
	// the unique deletion target.
	RemoveSingleMatch
	// RemoveNeedsSelection means multiple accepted candidates exist; an
	// explicit external selection is required before any deletion.
	RemoveNeedsSelection
)

func (s RemoveState) String() string {
	switch s {
	case RemoveSingleMatch:
		return "single_match"
	case RemoveNeedsSelection:
		return "needs_selection"
	default:
		return "no_match"
	}
}

// AddResolution is the outcome of resolving one to-add entry against the
// full local library. A non-empty candidate list means the song can be
// satisfied without creating it.
type AddResolution struct {
	Track      services.Track
	SearchTerm string
	Candidates []match.Candidate
	Err        error // malformed search term; the entry is skipped, not fatal
}

// Satisfiable reports whether the entry can be added from existing library
// content.
func (r AddResolution) Satisfiable() bool {
	return r.Err == nil && len(r.Candidates) > 0
}

// RemoveResolution is the outcome of resolving one to-remove entry: every
// accepted match found library-wide, ranked, plus the resulting state.
type RemoveResolution struct {
	Track      services.Track
	Candidates []match.Candidate
	State      RemoveState
}

// Plan is the full reconciliation plan for one run. Planning only reads and
// scores; no catalog is mutated until the plan is applied.
type Plan struct {
	Adds    []AddResolution
	Removes []RemoveResolution
}

// SatisfiableAdds counts to-add entries resolvable from existing library
// content.
func (p Plan) SatisfiableAdds() int {
	n := 0
	for _, a := range p.Adds {
		if a.Satisfiable() {
			n++
		}
	}
	return n
}

// Planner resolves diffed titles into concrete actionable targets against
// the full local library catalog.
type Planner struct {
	library *catalog.Catalog
	logger  *log.Logger
}

// NewPlanner creates a planner over the given library catalog.
func NewPlanner(library *catalog.Catalog, logger *log.Logger) *Planner {
	return &Planner{library: library, logger: logger}
}

// Plan resolves every entry of the diff.
//
// To-add entries are probed with the composite "<title> - <artist>" key from
// the source record via the exact-then-fuzzy search-term scan. To-remove
// entries carry the authoritative record from the target playlist snapshot
// and are matched library-wide with the full weighted score; ties among
// multiple accepted candidates are never auto-picked.
func (p *Planner) Plan(diff DiffResult) Plan {
	plan := Plan{
		Adds:    make([]AddResolution, 0, len(diff.ToAdd)),
		Removes: make([]RemoveResolution, 0, len(diff.ToRemove)),
	}

	for _, track := range diff.ToAdd {
		term := fmt.Sprintf("%s - %s", track.Title, track.Artist)
		res := AddResolution{Track: track, SearchTerm: term}

		res.Candidates, res.Err = p.library.FindBySearchTerm(term)
		if res.Err != nil {
			p.logger.Warn("skipping add entry", "title", track.Title, "err", res.Err)
		} else if len(res.Candidates) == 0 {
			p.logger.Info("cannot satisfy automatically", "title", track.Title, "artist", track.Artist)
		}

		plan.Adds = append(plan.Adds, res)
	}

	for _, track := range diff.ToRemove {
		res := RemoveResolution{
			Track:      track,
			Candidates: p.library.AcceptedCandidates(track),
		}

		switch len(res.Candidates) {
		case 0:
			res.State = RemoveNoMatch
		case 1:
			res.State = RemoveSingleMatch
		default:
			res.State = RemoveNeedsSelection
		}

		p.logger.Debug("resolved removal", "title", track.Title, "state", res.State.String(), "candidates", len(res.Candidates))
		plan.Removes = append(plan.Removes, res)
	}

	return plan
}
