package matching

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords is the small English stop-word set removed before keyword
// comparison. "will the fed raise rates" and "fed raise rates" should look
// identical to the pre-filter.
//
//nolint:gochecknoglobals // immutable set
var stopWords = map[string]struct{}{
	"will": {}, "the": {}, "be": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {}, "for": {},
	"of": {}, "by": {}, "or": {},
}

// keywords extracts the comparison tokens from a market title: lowercased,
// punctuation treated as whitespace, tokens shorter than minLen dropped,
// stop words removed.
func keywords(title string, minLen int) []string {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)

	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < minLen {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}

	return out
}

// shareKeyword reports whether the two keyword sets overlap.
func shareKeyword(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return true
		}
	}

	return false
}

// rankKey builds the location-independent comparison string for the fuzzy
// ranker: the sorted keyword set joined with single spaces.
func rankKey(kws []string) string {
	sorted := make([]string, len(kws))
	copy(sorted, kws)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
