package match

import (
	"strings"

	"tunesync/internal/services"
)

// Mode selects how two metadata strings are compared.
type Mode int

const (
	// Strict compares after case folding only. No Unicode normalization and
	// no punctuation stripping, so near-duplicate titles that differ only by
	// meaningful punctuation stay distinct.
	Strict Mode = iota
	// Normalized compares after full normalization (case, diacritics,
	// punctuation, whitespace). Maximizes recall for typographic noise such
	// as curly quotes and doubled spaces.
	Normalized
)

// StringsMatch reports whether a and b denote the same value under the given
// mode. Callers should attempt Strict first and fall back to Normalized only
// when Strict fails.
func StringsMatch(a, b string, mode Mode) bool {
	if mode == Strict {
		return strings.EqualFold(a, b)
	}
	return Normalize(a) == Normalize(b)
}

// Weights configures the multi-field track score. The zero value is not
// usable; start from DefaultWeights. The defaults are a tuned heuristic, not
// a law, and can be overridden through configuration.
type Weights struct {
	TitleStrict       int `toml:"title_strict"`
	TitleNormalized   int `toml:"title_normalized"`
	ArtistStrict      int `toml:"artist_strict"`
	ArtistNormalized  int `toml:"artist_normalized"`
	AlbumStrict       int `toml:"album_strict"`
	AlbumNormalized   int `toml:"album_normalized"`
	Duration          int `toml:"duration"`
	TrackNumber       int `toml:"track_number"`
	DiscNumber        int `toml:"disc_number"`
	DurationTolerance int `toml:"duration_tolerance"` // seconds
	Threshold         int `toml:"threshold"`
}

// DefaultWeights returns the default scoring policy. The threshold of 7
// guarantees an accepted match needs a title match plus either a strict
// artist match or at least two weaker corroborating signals.
func DefaultWeights() Weights {
	return Weights{
		TitleStrict:       5,
		TitleNormalized:   3,
		ArtistStrict:      4,
		ArtistNormalized:  2,
		AlbumStrict:       3,
		AlbumNormalized:   1,
		Duration:          2,
		TrackNumber:       1,
		DiscNumber:        1,
		DurationTolerance: 1,
		Threshold:         7,
	}
}

// Candidate is a scored library track produced by the matching stage.
// Candidates are ephemeral: ranked, surfaced, never persisted.
type Candidate struct {
	Track       services.Track
	Score       int
	ExactTitle  bool
	ExactArtist bool
}

// Accepted reports whether the candidate's score meets the acceptance
// threshold.
func (c Candidate) Accepted(w Weights) bool {
	return c.Score >= w.Threshold
}

// ScoreTrack rates how well cand matches target under the weights. The title
// is the primary key for this domain: a candidate whose title fails both
// match levels is rejected outright and ok is false regardless of how the
// other fields agree.
//
// Artist and album contribute only when both records carry the field;
// duration, track number and disc number contribute only when known on both
// sides. Unknown fields never corroborate a match.
func ScoreTrack(cand, target services.Track, w Weights) (c Candidate, ok bool) {
	c = Candidate{Track: cand}

	switch {
	case StringsMatch(cand.Title, target.Title, Strict):
		c.Score += w.TitleStrict
		c.ExactTitle = true
	case StringsMatch(cand.Title, target.Title, Normalized):
		c.Score += w.TitleNormalized
	default:
		return c, false
	}

	if cand.Artist != "" && target.Artist != "" {
		switch {
		case StringsMatch(cand.Artist, target.Artist, Strict):
			c.Score += w.ArtistStrict
			c.ExactArtist = true
		case StringsMatch(cand.Artist, target.Artist, Normalized):
			c.Score += w.ArtistNormalized
		}
	}

	if cand.Album != "" && target.Album != "" {
		switch {
		case StringsMatch(cand.Album, target.Album, Strict):
			c.Score += w.AlbumStrict
		case StringsMatch(cand.Album, target.Album, Normalized):
			c.Score += w.AlbumNormalized
		}
	}

	if cand.Duration > 0 && target.Duration > 0 {
		delta := cand.Duration - target.Duration
		if delta < 0 {
			delta = -delta
		}
		if delta <= w.DurationTolerance {
			c.Score += w.Duration
		}
	}

	if cand.TrackNumber > 0 && target.TrackNumber > 0 && cand.TrackNumber == target.TrackNumber {
		c.Score += w.TrackNumber
	}

	if cand.DiscNumber > 0 && target.DiscNumber > 0 && cand.DiscNumber == target.DiscNumber {
		c.Score += w.DiscNumber
	}

	return c, true
}

// Less orders candidates for ranking: higher score first, then strict title
// match, then strict artist match. Equal candidates keep catalog scan order
// when sorted stably.
func Less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.ExactTitle != b.ExactTitle {
		return a.ExactTitle
	}
	if a.ExactArtist != b.ExactArtist {
		return a.ExactArtist
	}
	return false
}
