// package selection parses the compact 1-based index expressions an operator
// types to pick entries from a numbered menu, e.g. "1,3-5,8".
package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tunesync/internal/shared"
)

// Parse evaluates a comma-separated selection expression against the bound
// max. Each token is either a single positive integer or an inclusive
// "start-end" range; surrounding whitespace is ignored.
//
// Tokens that fail to parse or fall outside [1, max] are collected in skipped
// and do not abort parsing of the remaining tokens. The returned indices are
// deduplicated and sorted ascending. Empty input yields an empty selection,
// not an error.
func Parse(expr string, max int) (indices []int, skipped []error) {
	seen := map[int]bool{}

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		start, end, err := parseToken(token)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if start < 1 || end > max {
			skipped = append(skipped, fmt.Errorf("%w: %q not in [1, %d]", shared.ErrOutOfRange, token, max))
			continue
		}

		for i := start; i <= end; i++ {
			seen[i] = true
		}
	}

	indices = make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	return indices, skipped
}

// parseToken resolves a single token to an inclusive [start, end] span. A
// plain integer yields start == end.
func parseToken(token string) (start, end int, err error) {
	if lo, hi, ok := strings.Cut(token, "-"); ok {
		start, err = strconv.Atoi(strings.TrimSpace(lo))
		if err == nil {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: range %q is not numeric", shared.ErrMalformedInput, token)
		}
		if start > end {
			return 0, 0, fmt.Errorf("%w: range %q runs backwards", shared.ErrMalformedInput, token)
		}
		return start, end, nil
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not an index", shared.ErrMalformedInput, token)
	}
	return n, n, nil
}
