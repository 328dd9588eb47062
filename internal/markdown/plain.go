package markdown

import (
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// PlainText flattens markdown to plain prose for search-result snippets:
// text and link labels survive, code blocks and markup do not. The result
// is truncated to maxLen runes with an ellipsis; maxLen <= 0 means no
// limit.
func PlainText(src string, maxLen int) string {
	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.CodeBlock:
			return ast.SkipChildren
		case *ast.Code:
			b.WriteString(string(n.Literal))
			b.WriteByte(' ')
		case *ast.Text:
			b.WriteString(string(n.Literal))
			b.WriteByte(' ')
		}
		return ast.GoToNext
	})

	out := strings.Join(strings.Fields(b.String()), " ")
	if maxLen > 0 {
		runes := []rune(out)
		if len(runes) > maxLen {
			out = strings.TrimRight(string(runes[:maxLen]), " ") + "…"
		}
	}
	return out
}
