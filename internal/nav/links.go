package nav

import "strings"

// LinkKind classifies one cross-reference found in documentation prose.
type LinkKind int

const (
	// LinkFragment is a same-page anchor ("#examples").
	LinkFragment LinkKind = iota
	// LinkExternal is an absolute URL.
	LinkExternal
	// LinkItem resolved to a documented item.
	LinkItem
	// LinkUnresolved means render the link text literally.
	LinkUnresolved
)

// Link is the outcome of resolving one intra-doc link. Target carries the
// fragment or URL for the non-item kinds; Item is set only for LinkItem.
type Link struct {
	Kind   LinkKind
	Target string
	Item   ItemHandle
}

// ResolveLink resolves one embedded cross-reference string from an item's
// prose. It always returns exactly one outcome and never fails: malformed
// or unknown references come back as LinkUnresolved.
func (n *Navigator) ResolveLink(origin ItemHandle, text string) Link {
	if strings.HasPrefix(text, "#") {
		return Link{Kind: LinkFragment, Target: text}
	}
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return Link{Kind: LinkExternal, Target: text}
	}
	if !origin.Valid() || text == "" {
		return Link{Kind: LinkUnresolved, Target: text}
	}

	ref := text
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}
	// A "kind@" disambiguator ("struct@Foo", "fn@get") is parsed as a
	// hint only; candidates are not filtered by it.
	if i := strings.IndexByte(ref, '@'); i >= 0 {
		ref = ref[i+1:]
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Link{Kind: LinkUnresolved, Target: text}
	}

	// The generator pre-resolves prose links; its table is authoritative
	// when it has an entry for the literal text.
	if id, ok := origin.Item().Links[text]; ok {
		if h, ok := n.resolveID(origin.Package(), id, ""); ok {
			return Link{Kind: LinkItem, Target: text, Item: h}
		}
	}
	if ref != text {
		if id, ok := origin.Item().Links[ref]; ok {
			if h, ok := n.resolveID(origin.Package(), id, ""); ok {
				return Link{Kind: LinkItem, Target: text, Item: h}
			}
		}
	}

	for _, path := range linkCandidates(origin, ref) {
		if h, err := n.ResolvePath(path); err == nil {
			return Link{Kind: LinkItem, Target: text, Item: h}
		}
	}
	return Link{Kind: LinkUnresolved, Target: text}
}

// linkCandidates expands a link reference into the qualified paths to try,
// in order: self:: rewritten to the owning package, an already-qualified
// path as-is then package-qualified, a bare identifier package-qualified.
func linkCandidates(origin ItemHandle, ref string) []string {
	pkg := origin.Package().Name

	if rest, ok := strings.CutPrefix(ref, "self::"); ok {
		return []string{pkg + "::" + rest}
	}
	if rest, ok := strings.CutPrefix(ref, "crate::"); ok {
		return []string{pkg + "::" + rest}
	}
	if strings.Contains(ref, "::") {
		return []string{ref, pkg + "::" + ref}
	}
	return []string{pkg + "::" + ref}
}
