// Package search builds and queries per-package full-text indexes over
// item names and documentation prose, ranked with BM25.
package search

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Tokenize splits text into search tokens. Words split on whitespace and
// punctuation; compound identifiers (camelCase, hyphen- or
// underscore-joined) additionally contribute each component, followed by
// the whole joined identifier, so both "HashMap" and "map" find
// HashMap. Fenced code blocks are excluded.
func Tokenize(text string) []string {
	var out []string
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if inFence {
			// Eager close: the marker anywhere on the line ends the
			// block.
			if strings.Contains(line, "```") {
				inFence = false
			}
			continue
		}
		// Conservative open: only a marker at line start begins one.
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			inFence = true
			continue
		}
		out = appendLineTokens(out, line)
	}
	return out
}

func appendLineTokens(out []string, line string) []string {
	start := -1
	for i, r := range line {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = appendWordTokens(out, line[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = appendWordTokens(out, line[start:])
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// appendWordTokens emits a word's sub-tokens, then the joined word itself
// when it was compound.
func appendWordTokens(out []string, word string) []string {
	subs := splitWord(word)
	out = append(out, subs...)
	if len(subs) > 1 || (len(subs) == 1 && subs[0] != word) {
		out = append(out, word)
	}
	return out
}

// splitWord breaks one identifier at hyphens, underscores, and
// lower-to-upper camelCase boundaries.
func splitWord(word string) []string {
	var subs []string
	var cur strings.Builder
	var prev rune
	for i, r := range word {
		switch {
		case r == '_' || r == '-':
			if cur.Len() > 0 {
				subs = append(subs, cur.String())
				cur.Reset()
			}
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev):
			subs = append(subs, cur.String())
			cur.Reset()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	if cur.Len() > 0 {
		subs = append(subs, cur.String())
	}
	return subs
}

// HashToken hashes a token for case-insensitive matching.
func HashToken(token string) uint64 {
	return xxhash.Sum64String(strings.ToLower(token))
}
