package rustdoc

import (
	"regexp"
	"strconv"
)

// ExternalCrateName looks up the Cargo package name for a dependency by
// crate ID. Prefers the name extracted from html_root_url (e.g.
// "https://docs.rs/tracing-core/0.1.36/...") since the Name field uses the
// Rust lib name (underscores) which may differ from the Cargo name
// (hyphens). Falls back to the lib name when no docs.rs URL is present.
func (c *Crate) ExternalCrateName(crateID int) string {
	ext, ok := c.ExternalCrates[strconv.Itoa(crateID)]
	if !ok {
		return ""
	}
	if name := extractDocsRsCrateName(ext.HTMLRootURL); name != "" {
		return name
	}
	return ext.Name
}

// docsRsCrateNameRe extracts the crate name from a docs.rs html_root_url.
var docsRsCrateNameRe = regexp.MustCompile(`^https?://docs\.rs/([^/]+)/`)

func extractDocsRsCrateName(rootURL string) string {
	m := docsRsCrateNameRe.FindStringSubmatch(rootURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
