package matching

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
)

// RankResult is one accepted candidate with its normalized distance.
type RankResult struct {
	Index    int
	Distance float64
}

// ranker scores title similarity. Titles are reduced to sorted keyword
// strings (see rankKey), which makes the comparison independent of word
// order, and compared by Levenshtein distance normalized to [0,1].
type ranker struct {
	// maxDistance is the acceptance cutoff: results with normalized
	// distance above it are discarded (0.40 ≡ similarity 0.60).
	maxDistance float64
	minTokenLen int
}

// rank returns the accepted candidates ascending by distance. Ties keep
// input order, so the first of two equally-good candidates wins.
func (r *ranker) rank(query string, candidates []string) []RankResult {
	queryKey := rankKey(keywords(query, r.minTokenLen))

	results := make([]RankResult, 0, len(candidates))
	for i, cand := range candidates {
		d := normalizedDistance(queryKey, rankKey(keywords(cand, r.minTokenLen)))
		if d <= r.maxDistance {
			results = append(results, RankResult{Index: i, Distance: d})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	return results
}

// normalizedDistance is the Levenshtein distance divided by the longer
// string's rune length.
func normalizedDistance(a, b string) float64 {
	if a == b {
		return 0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}

	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

// confidence converts a normalized distance into the 0–100 match score.
func confidence(distance float64) int {
	return int(math.Round((1 - distance) * 100))
}
