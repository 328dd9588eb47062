package nav

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const defaultMaxSuggestions = 5

// Suggestion is one ranked "did you mean" candidate for a failed path
// resolution. Score is normalized similarity in [0, 1], 1 being an exact
// match.
type Suggestion struct {
	Path  string
	Score float64
}

type candidate struct {
	name string
	path string
}

// rankSuggestions scores candidates against a failing path segment by
// normalized edit-distance similarity of their final name, most similar
// first. Ties break by shorter path, then lexical order. Returns at most
// max distinct paths.
func rankSuggestions(segment string, candidates []candidate, max int) []Suggestion {
	if max <= 0 {
		max = defaultMaxSuggestions
	}

	seen := make(map[string]bool)
	var out []Suggestion
	for _, c := range candidates {
		if c.path == "" || seen[c.path] {
			continue
		}
		seen[c.path] = true
		out = append(out, Suggestion{Path: c.path, Score: similarity(segment, c.name)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if len(out[i].Path) != len(out[j].Path) {
			return len(out[i].Path) < len(out[j].Path)
		}
		return out[i].Path < out[j].Path
	})

	if len(out) > max {
		out = out[:max]
	}
	return out
}

// similarity maps edit distance to [0, 1]: identical strings score 1,
// completely dissimilar strings approach 0. Case-insensitive, since path
// typos are usually case slips or transpositions.
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
