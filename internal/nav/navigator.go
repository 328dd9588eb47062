package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/names"
	"github.com/jbr/ferritin-sub001/internal/search"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// Navigator composes documentation sources with precedence local > std >
// registry: the first source whose lookup or canonicalize answers wins, and
// loads are routed to that source. Loaded packages are memoized for the
// navigator's lifetime.
type Navigator struct {
	sources []source.Source
	local   defaulter

	maxSuggestions int

	mu     sync.Mutex
	loaded map[string]*source.Package
	group  singleflight.Group
}

// New builds a navigator over the given sources, listed in precedence
// order. A nil or failed source is simply omitted by the caller; the
// navigator works with whatever it is given, down to zero sources.
func New(cfg config.NavConfig, sources ...source.Source) *Navigator {
	n := &Navigator{
		sources:        sources,
		maxSuggestions: cfg.MaxSuggestions,
		loaded:         make(map[string]*source.Package),
	}
	for _, s := range sources {
		if d, ok := s.(defaulter); ok && n.local == nil {
			n.local = d
		}
	}
	return n
}

// defaulter is implemented by sources that designate a default package for
// unqualified path resolution (the local workspace source).
type defaulter interface {
	DefaultPackage() string
}

// NotFoundError reports a path that resolved to nothing. It carries ranked
// suggestions so callers can offer "did you mean" output; it is never
// engine-fatal.
type NotFoundError struct {
	Path        string
	Suggestions []Suggestion
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("%q not found (closest: %s)", e.Path, e.Suggestions[0].Path)
	}
	return fmt.Sprintf("%q not found", e.Path)
}

// canonicalize runs the precedence chain: the first source that recognizes
// the name wins and also becomes the load route.
func (n *Navigator) canonicalize(name string) (string, source.Source, bool) {
	for _, s := range n.sources {
		if canonical, ok := s.Canonicalize(name); ok {
			return canonical, s, true
		}
	}
	return "", nil, false
}

// loadPackage loads (or returns the memoized) package for a canonical name
// and version requirement, routed to the source that recognized the name.
// Concurrent loads of the same package collapse into one.
func (n *Navigator) loadPackage(name, requirement string) (*source.Package, error) {
	canonical, src, ok := n.canonicalize(name)
	if !ok {
		return nil, &NotFoundError{Path: name, Suggestions: n.packageSuggestions(name)}
	}

	key := names.Normalize(canonical)
	if requirement != "" && requirement != "latest" {
		key += "@" + requirement
	}

	n.mu.Lock()
	pkg, ok := n.loaded[key]
	n.mu.Unlock()
	if ok {
		return pkg, nil
	}

	v, err, _ := n.group.Do(key, func() (interface{}, error) {
		version := requirement
		if info, ok := src.Lookup(canonical, requirement); ok && info.Version != "" {
			version = info.Version
		}
		p, err := src.Load(canonical, version)
		if err != nil {
			return nil, err
		}
		n.mu.Lock()
		n.loaded[key] = p
		n.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*source.Package), nil
}

// rootHandle returns the handle for a package's root module.
func (n *Navigator) rootHandle(pkg *source.Package) ItemHandle {
	return newHandle(n, pkg, pkg.ItemRef(strconv.Itoa(pkg.Crate.Root)), "")
}

// resolveID follows an id reference from within pkg. Same-package ids
// resolve directly; ids known only through the summary table resolve
// cross-package by qualified path. The alias names the handle when it was
// reached through a re-export.
func (n *Navigator) resolveID(pkg *source.Package, id int, alias string) (ItemHandle, bool) {
	if item := pkg.ItemRef(strconv.Itoa(id)); item != nil {
		return newHandle(n, pkg, item, alias), true
	}

	summary, ok := pkg.Crate.Paths[strconv.Itoa(id)]
	if !ok || len(summary.Path) == 0 {
		return ItemHandle{}, false
	}

	segments := summary.Path
	if summary.CrateID != 0 {
		if ext := pkg.Crate.ExternalCrateName(summary.CrateID); ext != "" {
			segments = append([]string{ext}, segments[1:]...)
		}
	}
	h, err := n.ResolvePath(strings.Join(segments, "::"))
	if err != nil {
		return ItemHandle{}, false
	}
	if alias != "" {
		h.alias = alias
	}
	return h, true
}

// ResolvePath resolves a dotted path like "tokio::sync::Mutex" to an item
// handle. The leading segment may carry a version requirement
// ("serde@^1.0::Deserialize"). An unqualified path is resolved relative to
// the local default package when one exists. Failure returns a
// NotFoundError carrying ranked suggestions.
func (n *Navigator) ResolvePath(path string) (ItemHandle, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return ItemHandle{}, &NotFoundError{Path: path}
	}

	head, requirement := splitRequirement(segments[0])

	if _, _, ok := n.canonicalize(head); ok {
		pkg, err := n.loadPackage(head, requirement)
		if err != nil {
			return ItemHandle{}, err
		}
		return n.descend(path, n.rootHandle(pkg), segments[1:])
	}

	// Unqualified: relative to the workspace default package. A miss inside
	// the default package already ranked its children against the failing
	// segment; those suggestions outrank package-name matches.
	if n.local != nil {
		if def := n.local.DefaultPackage(); def != "" && !names.Equivalent(head, def) {
			pkg, err := n.loadPackage(def, "")
			if err == nil {
				h, derr := n.descend(path, n.rootHandle(pkg), segments)
				if derr == nil {
					return h, nil
				}
				var nf *NotFoundError
				if errors.As(derr, &nf) && len(nf.Suggestions) > 0 {
					return ItemHandle{}, nf
				}
			}
		}
	}

	return ItemHandle{}, &NotFoundError{Path: path, Suggestions: n.packageSuggestions(head)}
}

// descend walks the remaining segments from a handle by exact child-name
// match. On a miss it ranks the current level's children against the
// failing segment.
func (n *Navigator) descend(fullPath string, h ItemHandle, segments []string) (ItemHandle, error) {
	if !h.Valid() {
		return ItemHandle{}, &NotFoundError{Path: fullPath}
	}
	for _, seg := range segments {
		child, ok := h.Child(seg)
		if !ok {
			return ItemHandle{}, &NotFoundError{
				Path:        fullPath,
				Suggestions: n.childSuggestions(h, seg),
			}
		}
		h = child
	}
	return h, nil
}

// childSuggestions ranks a handle's children against the failing segment.
func (n *Navigator) childSuggestions(h ItemHandle, segment string) []Suggestion {
	var candidates []candidate
	for _, child := range h.Children() {
		name := child.Name()
		if name == "" {
			continue
		}
		candidates = append(candidates, candidate{name: name, path: child.Path()})
	}
	return rankSuggestions(segment, candidates, n.maxSuggestions)
}

// packageSuggestions ranks every listable package name against a
// misspelled leading segment.
func (n *Navigator) packageSuggestions(segment string) []Suggestion {
	var candidates []candidate
	for _, info := range n.ListAvailablePackages() {
		candidates = append(candidates, candidate{name: info.Name, path: info.Name})
	}
	return rankSuggestions(segment, candidates, n.maxSuggestions)
}

// GetItemFromIDPath re-enters a package at a colon-separated id path (as
// produced by the search index) and returns the handle for its final id
// together with the display names along the walk.
func (n *Navigator) GetItemFromIDPath(pkgName, idPath string) (ItemHandle, []string, error) {
	pkg, err := n.loadPackage(pkgName, "")
	if err != nil {
		return ItemHandle{}, nil, err
	}

	var (
		h        ItemHandle
		segments []string
	)
	for _, raw := range strings.Split(idPath, ":") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return ItemHandle{}, nil, fmt.Errorf("bad id path %q: %w", idPath, err)
		}
		item := pkg.ItemRef(strconv.Itoa(id))
		if item == nil {
			return ItemHandle{}, nil, &NotFoundError{Path: pkgName + "/" + idPath}
		}
		h = newHandle(n, pkg, item, "")
		if name := h.Name(); name != "" {
			segments = append(segments, name)
		}
	}
	if !h.Valid() {
		return ItemHandle{}, nil, &NotFoundError{Path: pkgName + "/" + idPath}
	}
	return h, segments, nil
}

// ListAvailablePackages merges every source's listing, deduplicating by
// canonical name with source precedence.
func (n *Navigator) ListAvailablePackages() []source.PackageInfo {
	seen := make(map[string]bool)
	var out []source.PackageInfo
	for _, s := range n.sources {
		for _, info := range s.ListAvailable() {
			key := names.Normalize(info.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, info)
		}
	}
	return out
}

// Search runs a ranked full-text query. A nil scope searches every local
// and standard-library package; packages that fail to load are skipped with
// a warning rather than aborting the query.
func (n *Navigator) Search(ctx context.Context, query string, scope []string) ([]search.Result, error) {
	if len(scope) == 0 {
		for _, s := range n.sources {
			if s.Origin() == source.OriginRegistry {
				continue
			}
			for _, info := range s.ListAvailable() {
				scope = append(scope, info.Name)
			}
		}
	}

	var pkgs []*source.Package
	seen := make(map[string]bool)
	for _, name := range scope {
		key := names.Normalize(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		pkg, err := n.loadPackage(name, "")
		if err != nil {
			slog.Warn("skipping package in search", "package", name, "error", err)
			continue
		}
		pkgs = append(pkgs, pkg)
	}

	return search.Run(ctx, pkgs, query)
}

// splitPath splits on "::" and drops empty segments.
func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "::") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// splitRequirement splits an optional "@requirement" suffix off a leading
// path segment.
func splitRequirement(segment string) (name, requirement string) {
	if i := strings.IndexByte(segment, '@'); i >= 0 {
		return segment[:i], segment[i+1:]
	}
	return segment, ""
}
