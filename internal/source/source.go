// Package source provides the pluggable providers of documentation
// bundles: the local workspace, the installed standard library, and the
// docs.rs registry.
package source

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/jbr/ferritin-sub001/internal/rustdoc"
)

// Origin tags where a package's documentation came from.
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginStd      Origin = "std"
	OriginRegistry Origin = "registry"
)

// PackageInfo is lightweight metadata about an available package, known
// without loading its full documentation.
type PackageInfo struct {
	Name        string
	Version     string
	Description string
	// Default marks the workspace's default/aliased target package.
	Default bool
	// Members lists the workspace members that depend on this package.
	Members []string
	// DevOnly is set when every workspace edge to this package is a
	// dev-dependency. Display metadata, not resolution semantics.
	DevOnly bool
	// Path is the on-disk bundle location, if known.
	Path   string
	Origin Origin
}

// Package is one package's fully parsed, version-normalized documentation.
// Constructed once per load and read-only thereafter; downstream handles
// reference it, never copy it.
type Package struct {
	Name        string
	Version     string
	Origin      Origin
	CachePath   string
	ContentHash uint64
	Crate       *rustdoc.Crate

	// items holds one stable pointer per index entry so handles can use
	// address identity. Built once at construction.
	items map[string]*rustdoc.Item
}

// ItemRef returns a stable pointer to the index entry with the given id,
// or nil. Repeated calls with the same id return the same pointer.
func (p *Package) ItemRef(id string) *rustdoc.Item {
	return p.items[id]
}

// NewPackage parses raw bundle bytes into a Package. The bundle's own
// crate_version, when present, wins over the requested version.
func NewPackage(name string, version string, origin Origin, cachePath string, data []byte) (*Package, error) {
	crate, err := rustdoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing bundle for %s: %w", name, err)
	}
	if crate.CrateVersion != nil && *crate.CrateVersion != "" {
		version = *crate.CrateVersion
	}

	items := make(map[string]*rustdoc.Item, len(crate.Index))
	for id := range crate.Index {
		it := crate.Index[id]
		items[id] = &it
	}

	return &Package{
		Name:        name,
		Version:     version,
		Origin:      origin,
		CachePath:   cachePath,
		ContentHash: xxhash.Sum64(data),
		Crate:       crate,
		items:       items,
	}, nil
}

// Source is a provider of documentation bundles and their metadata.
// Lookup and Canonicalize are cheap; Load is expensive (parse + normalize).
// ListAvailable may be empty and is never guaranteed exhaustive.
type Source interface {
	Origin() Origin
	Lookup(name, requirement string) (*PackageInfo, bool)
	Canonicalize(name string) (string, bool)
	Load(name, version string) (*Package, error)
	ListAvailable() []PackageInfo
}

// UnavailableError reports a source that failed to initialize. It degrades
// the engine to fewer sources and is never fatal.
type UnavailableError struct {
	Origin Origin
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s source unavailable: %v", e.Origin, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
