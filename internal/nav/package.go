// Package nav aggregates documentation sources and resolves dotted item
// paths, intra-doc links and search requests across package boundaries.
package nav

import (
	"strconv"
	"strings"

	"github.com/jbr/ferritin-sub001/internal/rustdoc"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// ItemHandle bundles an item with its owning package and the resolving
// navigator. An item alone cannot answer "which package is this" or "how do
// I follow a reference in its prose"; every non-trivial operation needs the
// triple. Handles are immutable, trivially copyable, and never outlive
// their package.
type ItemHandle struct {
	pkg  *source.Package
	item *rustdoc.Item
	nav  *Navigator
	// alias overrides the item's own name when it was reached through a
	// re-export.
	alias string
}

func newHandle(nav *Navigator, pkg *source.Package, item *rustdoc.Item, alias string) ItemHandle {
	return ItemHandle{pkg: pkg, item: item, nav: nav, alias: alias}
}

// Valid reports whether the handle references an item.
func (h ItemHandle) Valid() bool { return h.item != nil }

// Same reports identity: both handles reference the same item in the same
// package. Structural equality is deliberately not considered.
func (h ItemHandle) Same(other ItemHandle) bool {
	return h.item == other.item && h.pkg == other.pkg
}

// Package returns the owning package.
func (h ItemHandle) Package() *source.Package { return h.pkg }

// ID returns the item's package-scoped id. IDs from different packages are
// never comparable.
func (h ItemHandle) ID() int {
	if h.item == nil {
		return 0
	}
	return h.item.ID
}

// Name returns the item's display name, honoring re-export aliasing.
func (h ItemHandle) Name() string {
	if h.item == nil {
		return ""
	}
	if h.alias != "" {
		return h.alias
	}
	if h.item.Name != nil {
		return *h.item.Name
	}
	return ""
}

// Kind returns the item's kind tag, preferring the summary table (which
// carries the generator's own classification) over the inner payload.
func (h ItemHandle) Kind() string {
	if h.item == nil {
		return ""
	}
	if summary, ok := h.pkg.Crate.Paths[strconv.Itoa(h.item.ID)]; ok {
		return summary.Kind
	}
	return h.item.InnerKind()
}

// Docs returns the item's documentation prose, or "".
func (h ItemHandle) Docs() string {
	if h.item == nil {
		return ""
	}
	return h.item.DocText()
}

// Visibility returns the item's visibility tag.
func (h ItemHandle) Visibility() string {
	if h.item == nil {
		return ""
	}
	return h.item.VisibilityString()
}

// Span returns the item's source span, or nil.
func (h ItemHandle) Span() *rustdoc.Span {
	if h.item == nil {
		return nil
	}
	return h.item.Span
}

// Path returns the item's qualified path when the summary table knows it,
// falling back to the package-qualified display name.
func (h ItemHandle) Path() string {
	if h.item == nil {
		return ""
	}
	if summary, ok := h.pkg.Crate.Paths[strconv.Itoa(h.item.ID)]; ok && len(summary.Path) > 0 {
		return strings.Join(summary.Path, "::")
	}
	if name := h.Name(); name != "" {
		return h.pkg.Name + "::" + name
	}
	return h.pkg.Name
}

// Signature renders the item's declaration when it has one (currently
// functions and methods), or "".
func (h ItemHandle) Signature() string {
	if h.item == nil {
		return ""
	}
	return h.pkg.Crate.FunctionSignature(h.item)
}

// Item exposes the underlying item for shape-specific consumers.
func (h ItemHandle) Item() *rustdoc.Item { return h.item }

// visitKey identifies an item during a child walk. Ids are scoped to one
// package, so the guard must carry the package too: a glob re-export can
// cross into another package whose ids overlap with the origin's.
type visitKey struct {
	pkg *source.Package
	id  int
}

// Children returns the item's navigable child items: module members with
// re-exports substituted, struct fields, enum variants, trait items, and —
// for structs and enums — the methods and associated items of their
// inherent and trait impl blocks.
func (h ItemHandle) Children() []ItemHandle {
	if !h.Valid() {
		return nil
	}
	visited := make(map[visitKey]bool)
	return h.children(visited)
}

func (h ItemHandle) children(visited map[visitKey]bool) []ItemHandle {
	key := visitKey{pkg: h.pkg, id: h.item.ID}
	if visited[key] {
		return nil
	}
	visited[key] = true

	var out []ItemHandle
	switch h.item.InnerKind() {
	case rustdoc.KindModule:
		var mod rustdoc.Module
		if h.item.DecodeInner(rustdoc.KindModule, &mod) {
			for _, id := range mod.Items {
				out = append(out, h.moduleChild(id, visited)...)
			}
		}
	case rustdoc.KindStruct:
		var s rustdoc.Struct
		if h.item.DecodeInner(rustdoc.KindStruct, &s) {
			out = append(out, h.handlesFor(s.Fields())...)
			out = append(out, h.implChildren(s.Impls)...)
		}
	case rustdoc.KindEnum:
		var e rustdoc.Enum
		if h.item.DecodeInner(rustdoc.KindEnum, &e) {
			out = append(out, h.handlesFor(e.Variants)...)
			out = append(out, h.implChildren(e.Impls)...)
		}
	case rustdoc.KindTrait:
		var tr rustdoc.Trait
		if h.item.DecodeInner(rustdoc.KindTrait, &tr) {
			out = append(out, h.handlesFor(tr.Items)...)
		}
	case rustdoc.KindImpl:
		var impl rustdoc.Impl
		if h.item.DecodeInner(rustdoc.KindImpl, &impl) {
			out = append(out, h.handlesFor(impl.Items)...)
		}
	}
	return out
}

// moduleChild resolves one module member, substituting re-export targets.
// A named re-export contributes its target under the local name; a glob
// re-export contributes the target module's own children.
func (h ItemHandle) moduleChild(id int, visited map[visitKey]bool) []ItemHandle {
	item := itemRef(h.pkg, id)
	if item == nil {
		return nil
	}

	if item.InnerKind() != rustdoc.KindUse {
		return []ItemHandle{newHandle(h.nav, h.pkg, item, "")}
	}

	var use rustdoc.Use
	if !item.DecodeInner(rustdoc.KindUse, &use) || use.ID == nil {
		return nil
	}

	target, ok := h.nav.resolveID(h.pkg, *use.ID, use.Name)
	if !ok {
		return nil
	}
	if use.IsGlob {
		return target.children(visited)
	}
	return []ItemHandle{target}
}

func (h ItemHandle) handlesFor(ids []int) []ItemHandle {
	out := make([]ItemHandle, 0, len(ids))
	for _, id := range ids {
		if item := itemRef(h.pkg, id); item != nil {
			out = append(out, newHandle(h.nav, h.pkg, item, ""))
		}
	}
	return out
}

// implChildren collects the associated items of a type's impl blocks, both
// inherent and trait implementations, so Type::method resolves even when
// the method lives in a separate impl or comes from a trait.
func (h ItemHandle) implChildren(implIDs []int) []ItemHandle {
	var out []ItemHandle
	for _, implID := range implIDs {
		implItem := itemRef(h.pkg, implID)
		if implItem == nil {
			continue
		}
		var impl rustdoc.Impl
		if !implItem.DecodeInner(rustdoc.KindImpl, &impl) {
			continue
		}
		out = append(out, h.handlesFor(impl.Items)...)
	}
	return out
}

// Child returns the first child whose display name matches exactly.
func (h ItemHandle) Child(name string) (ItemHandle, bool) {
	for _, child := range h.Children() {
		if child.Name() == name {
			return child, true
		}
	}
	return ItemHandle{}, false
}

// itemRef returns a stable pointer into the package's index, so handle
// equality can rely on address identity.
func itemRef(pkg *source.Package, id int) *rustdoc.Item {
	return pkg.ItemRef(strconv.Itoa(id))
}
