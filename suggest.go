package gaffer

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/fvbommel/sortorder"
)

// closestID returns the known identifier nearest to requested, or "" when
// nothing is close enough to be a plausible typo. The threshold scales with
// the length of the requested identifier.
func closestID(requested string, known []string) string {
	if requested == "" || len(known) == 0 {
		return ""
	}

	threshold := len(requested) / 3
	if threshold < 1 {
		threshold = 1
	}

	best := ""
	bestDistance := threshold + 1
	for _, id := range known {
		if id == requested {
			continue
		}

		distance := levenshtein.ComputeDistance(requested, id)
		if distance < bestDistance {
			best = id
			bestDistance = distance
		}
	}

	return best
}

// naturalSorted returns a copy of ids in natural (numeric-aware) order, so
// that "svc2" sorts before "svc10".
func naturalSorted(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sortorder.NaturalLess(sorted[i], sorted[j])
	})
	return sorted
}
