package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankSuggestionsOrdering(t *testing.T) {
	candidates := []candidate{
		{name: "Vec", path: "std::vec::Vec"},
		{name: "VecDeque", path: "std::collections::VecDeque"},
		{name: "HashMap", path: "std::collections::HashMap"},
	}

	got := rankSuggestions("Vec", candidates, 3)
	assert.Equal(t, "std::vec::Vec", got[0].Path)
	assert.Equal(t, 1.0, got[0].Score)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Score, got[i-1].Score)
	}
}

func TestRankSuggestionsTies(t *testing.T) {
	// Equal similarity: shorter path first, then lexical.
	candidates := []candidate{
		{name: "abcd", path: "p::long::abcd"},
		{name: "abcx", path: "p::zz::abcx"},
		{name: "abcy", path: "p::aa::abcy"},
	}

	got := rankSuggestions("abcz", candidates, 3)
	assert.Equal(t, "p::aa::abcy", got[0].Path)
	assert.Equal(t, "p::zz::abcx", got[1].Path)
}

func TestRankSuggestionsCaseInsensitive(t *testing.T) {
	got := rankSuggestions("hashmap", []candidate{{name: "HashMap", path: "std::HashMap"}}, 1)
	assert.Equal(t, 1.0, got[0].Score)
}

func TestRankSuggestionsTruncatesAndDedupes(t *testing.T) {
	var candidates []candidate
	for i := 0; i < 3; i++ {
		candidates = append(candidates, candidate{name: "same", path: "p::same"})
	}
	candidates = append(candidates,
		candidate{name: "samey", path: "p::samey"},
		candidate{name: "sameish", path: "p::sameish"},
	)

	got := rankSuggestions("same", candidates, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "p::same", got[0].Path)
	assert.Equal(t, "p::samey", got[1].Path)
}

func TestSimilarityBounds(t *testing.T) {
	assert.Equal(t, 1.0, similarity("foo", "foo"))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.Greater(t, similarity("foo", "fop"), similarity("foo", "fxy"))
}
