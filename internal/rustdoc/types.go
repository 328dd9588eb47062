// Package rustdoc parses versioned rustdoc JSON bundles, upgrading older
// supported format versions to the canonical in-memory form.
package rustdoc

import "encoding/json"

// Crate is the top-level structure of a rustdoc JSON bundle.
type Crate struct {
	Root           int                      `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	Index          map[string]Item          `json:"index"`
	Paths          map[string]ItemSummary   `json:"paths"`
	ExternalCrates map[string]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// ExternalCrate identifies a dependency crate referenced by this bundle.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Item is a single entry in the bundle's index. IDs are opaque and unique
// only within the owning bundle; Inner holds the kind-specific payload as
// a single-key object ({"struct": {...}}, {"enum": {...}}, ...).
type Item struct {
	ID         int             `json:"id"`
	CrateID    int             `json:"crate_id"`
	Name       *string         `json:"name"`
	Span       *Span           `json:"span"`
	Visibility json.RawMessage `json:"visibility"`
	Docs       *string         `json:"docs"`
	Links      map[string]int  `json:"links"` // literal link text → item ID
	Inner      json.RawMessage `json:"inner"`
}

// Span locates an item in its source file.
type Span struct {
	Filename string `json:"filename"`
	Begin    [2]int `json:"begin"`
	End      [2]int `json:"end"`
}

// ItemSummary gives the qualified path and kind for an item, including
// items defined in other crates that this bundle only references.
type ItemSummary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item kinds as they appear in summaries and inner payloads.
const (
	KindModule    = "module"
	KindStruct    = "struct"
	KindEnum      = "enum"
	KindTrait     = "trait"
	KindFunction  = "function"
	KindUse       = "use"
	KindImpl      = "impl"
	KindTypeAlias = "type_alias"
	KindConstant  = "constant"
	KindVariant   = "variant"
	KindField     = "struct_field"
	KindMacro     = "macro"
	KindStatic    = "static"
	KindUnknown   = "unknown"
)

// Module is the inner payload of a module item.
type Module struct {
	IsCrate bool  `json:"is_crate"`
	Items   []int `json:"items"`
}

// Struct is the inner payload of a struct item. Kind distinguishes plain,
// tuple and unit structs; only plain structs carry named fields.
type Struct struct {
	Kind  json.RawMessage `json:"kind"`
	Impls []int           `json:"impls"`
}

// Fields returns the field item IDs of a plain struct.
func (s *Struct) Fields() []int {
	var kind map[string]json.RawMessage
	if err := json.Unmarshal(s.Kind, &kind); err != nil {
		return nil
	}
	plainData, ok := kind["plain"]
	if !ok {
		return nil
	}
	var plain struct {
		Fields []int `json:"fields"`
	}
	if err := json.Unmarshal(plainData, &plain); err != nil {
		return nil
	}
	return plain.Fields
}

// Enum is the inner payload of an enum item.
type Enum struct {
	Variants []int `json:"variants"`
	Impls    []int `json:"impls"`
}

// Trait is the inner payload of a trait item. Items are the trait's own
// associated items; Implementations reference impl blocks for the trait.
type Trait struct {
	Items           []int `json:"items"`
	Implementations []int `json:"implementations"`
}

// Use is the inner payload of a re-export.
type Use struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *int   `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

// Impl is the inner payload of an impl block. Trait is nil for inherent
// impls; For is the implementing type expression.
type Impl struct {
	Trait *PathRef        `json:"trait"`
	For   json.RawMessage `json:"for"`
	Items []int           `json:"items"`
}

// PathRef is a resolved reference to another item by ID.
type PathRef struct {
	Path string `json:"path"`
	ID   int    `json:"id"`
}

// InnerKind extracts the kind tag from an item's single-key inner payload.
func (it *Item) InnerKind() string {
	if len(it.Inner) == 0 {
		return KindUnknown
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(it.Inner, &outer); err != nil {
		return KindUnknown
	}
	for k := range outer {
		return k
	}
	return KindUnknown
}

// DecodeInner unmarshals the kind-specific payload into out if the item's
// inner payload carries the given kind.
func (it *Item) DecodeInner(kind string, out any) bool {
	data := unwrapInner(it.Inner, kind)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// VisibilityString returns the item's visibility as a plain tag: "public",
// "default", "crate" or "restricted".
func (it *Item) VisibilityString() string {
	if len(it.Visibility) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(it.Visibility, &s); err == nil {
		return s
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(it.Visibility, &outer); err != nil {
		return ""
	}
	for k := range outer {
		return k
	}
	return ""
}

// DocText returns the item's documentation prose, or "".
func (it *Item) DocText() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// unwrapInner extracts the inner data for a given kind from an item's Inner
// field. Inner is shaped like {"struct": {...}} or {"enum": {...}}.
func unwrapInner(inner json.RawMessage, kind string) json.RawMessage {
	if len(inner) == 0 {
		return nil
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(inner, &outer); err != nil {
		return nil
	}
	data, ok := outer[kind]
	if !ok {
		return nil
	}
	return data
}
