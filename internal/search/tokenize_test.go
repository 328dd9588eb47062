package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeCompounds(t *testing.T) {
	got := Tokenize("CamelCase hyphenate-word snake_word")
	want := []string{
		"Camel", "Case", "CamelCase",
		"hyphenate", "word", "hyphenate-word",
		"snake", "word", "snake_word",
	}
	assert.Equal(t, want, got)
}

func TestTokenizeSimpleWordsNotDuplicated(t *testing.T) {
	assert.Equal(t, []string{"plain", "words", "here"}, Tokenize("plain words, here."))
}

func TestTokenizeFencedCodeExcluded(t *testing.T) {
	text := "before\n```rust\nlet secret = 1;\n```\nafter"
	got := Tokenize(text)
	assert.Contains(t, got, "before")
	assert.Contains(t, got, "after")
	assert.NotContains(t, got, "secret")
}

func TestTokenizeFenceEagerClose(t *testing.T) {
	// Closing marker mid-line still ends the block.
	text := "```\nhidden\ncode ```\nvisible"
	got := Tokenize(text)
	assert.NotContains(t, got, "hidden")
	assert.NotContains(t, got, "code")
	assert.Contains(t, got, "visible")
}

func TestTokenizeFenceConservativeOpen(t *testing.T) {
	// A marker not at line start does not open a block.
	text := "inline ``` marker\nstill indexed"
	got := Tokenize(text)
	assert.Contains(t, got, "inline")
	assert.Contains(t, got, "still")
}

func TestHashTokenCaseInsensitive(t *testing.T) {
	assert.Equal(t, HashToken("Hello"), HashToken("HELLO"))
	assert.Equal(t, HashToken("Hello"), HashToken("hello"))
	assert.NotEqual(t, HashToken("hello"), HashToken("world"))
}
