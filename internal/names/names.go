// Package names canonicalizes crate identifiers. Cargo package names use
// hyphens while the Rust lib names rustdoc emits use underscores; the two
// forms refer to the same crate and must compare equal.
package names

import "strings"

// aliases maps known alternate crate names to their canonical (normalized)
// name. The rustc-std-workspace-* shims are Cargo-side aliases for the
// sysroot crates.
var aliases = map[string]string{
	"rustc_std_workspace_core":  "core",
	"rustc_std_workspace_alloc": "alloc",
	"rustc_std_workspace_std":   "std",
}

// Normalize returns the canonical form of a crate identifier: lowercased,
// hyphens folded to underscores, known aliases resolved.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	if canonical, ok := aliases[n]; ok {
		return canonical
	}
	return n
}

// Equivalent reports whether two crate identifiers refer to the same crate.
func Equivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// LibName returns the identifier rustdoc uses for a crate's bundle file:
// the Cargo name with hyphens folded to underscores, case preserved.
func LibName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
