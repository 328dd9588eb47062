package markdown

import (
	"strings"
	"testing"
)

func TestPlainText_StripsMarkup(t *testing.T) {
	t.Parallel()
	src := "A **bold** claim with [a link](https://x) and `code`."
	got := PlainText(src, 0)
	want := "A bold claim with a link and code ."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlainText_SkipsCodeBlocks(t *testing.T) {
	t.Parallel()
	src := "Before.\n\n```\nlet hidden = 1;\n```\n\nAfter."
	got := PlainText(src, 0)
	if strings.Contains(got, "hidden") {
		t.Errorf("code block leaked into snippet: %q", got)
	}
	if !strings.Contains(got, "Before.") || !strings.Contains(got, "After.") {
		t.Errorf("prose missing from snippet: %q", got)
	}
}

func TestPlainText_Truncates(t *testing.T) {
	t.Parallel()
	got := PlainText("one two three four", 7)
	if got != "one two…" {
		t.Errorf("got %q", got)
	}
	if full := PlainText("short", 100); full != "short" {
		t.Errorf("got %q", full)
	}
}
