package source

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/jbr/ferritin-sub001/internal/names"
)

// Local serves the current Cargo workspace: its members and their
// dependency graph, read from `cargo metadata` with no network access.
// Bundles come from the workspace's target/doc directory.
type Local struct {
	docDir      string
	defaultName string // normalized name of the default/aliased target
	infos       map[string]*PackageInfo
}

type cargoMetadata struct {
	Packages         []cargoPackage `json:"packages"`
	WorkspaceMembers []string       `json:"workspace_members"`
	Resolve          *struct {
		Root *string `json:"root"`
	} `json:"resolve"`
	TargetDirectory string `json:"target_directory"`
}

type cargoPackage struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  *string           `json:"description"`
	Dependencies []cargoDependency `json:"dependencies"`
	ManifestPath string            `json:"manifest_path"`
}

type cargoDependency struct {
	Name string  `json:"name"`
	Kind *string `json:"kind"` // nil = normal, "dev", "build"
}

// NewLocal reads the workspace rooted at (or above) dir. Returns an
// UnavailableError when there is no workspace manifest.
func NewLocal(dir string) (*Local, error) {
	cmd := exec.Command("cargo", "metadata", "--format-version", "1", "--offline", "--quiet")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, &UnavailableError{Origin: OriginLocal, Err: fmt.Errorf("cargo metadata: %w", err)}
	}
	return newLocalFromMetadata(out)
}

func newLocalFromMetadata(raw []byte) (*Local, error) {
	var meta cargoMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, &UnavailableError{Origin: OriginLocal, Err: fmt.Errorf("decoding cargo metadata: %w", err)}
	}

	members := make(map[string]bool, len(meta.WorkspaceMembers))
	for _, id := range meta.WorkspaceMembers {
		members[id] = true
	}

	l := &Local{
		docDir: filepath.Join(meta.TargetDirectory, "doc"),
		infos:  make(map[string]*PackageInfo),
	}

	byID := make(map[string]*cargoPackage, len(meta.Packages))
	for i := range meta.Packages {
		byID[meta.Packages[i].ID] = &meta.Packages[i]
	}

	for i := range meta.Packages {
		pkg := &meta.Packages[i]
		key := names.Normalize(pkg.Name)
		info := l.infos[key]
		if info == nil {
			info = &PackageInfo{Name: pkg.Name, Origin: OriginLocal}
			l.infos[key] = info
		}
		info.Version = pkg.Version
		if pkg.Description != nil {
			info.Description = *pkg.Description
		}
		if members[pkg.ID] {
			info.Path = filepath.Dir(pkg.ManifestPath)
		}
	}

	// Per-dependency display metadata: which members use it, and whether
	// only ever as a dev-dependency.
	devOnly := make(map[string]bool)
	for _, id := range meta.WorkspaceMembers {
		member := byID[id]
		if member == nil {
			continue
		}
		for _, dep := range member.Dependencies {
			key := names.Normalize(dep.Name)
			info := l.infos[key]
			if info == nil {
				info = &PackageInfo{Name: dep.Name, Origin: OriginLocal}
				l.infos[key] = info
			}
			info.Members = appendUnique(info.Members, member.Name)
			isDev := dep.Kind != nil && *dep.Kind == "dev"
			if seen, ok := devOnly[key]; !ok {
				devOnly[key] = isDev
			} else {
				devOnly[key] = seen && isDev
			}
		}
	}
	for key, dev := range devOnly {
		l.infos[key].DevOnly = dev
	}

	// The default target: the resolved root package, or the sole member.
	if meta.Resolve != nil && meta.Resolve.Root != nil {
		if root := byID[*meta.Resolve.Root]; root != nil {
			l.defaultName = names.Normalize(root.Name)
		}
	}
	if l.defaultName == "" && len(meta.WorkspaceMembers) == 1 {
		if only := byID[meta.WorkspaceMembers[0]]; only != nil {
			l.defaultName = names.Normalize(only.Name)
		}
	}
	if info, ok := l.infos[l.defaultName]; ok {
		info.Default = true
	}

	return l, nil
}

func (l *Local) Origin() Origin { return OriginLocal }

// DefaultPackage returns the workspace's default target name, or "".
func (l *Local) DefaultPackage() string {
	if info, ok := l.infos[l.defaultName]; ok {
		return info.Name
	}
	return ""
}

func (l *Local) Lookup(name, requirement string) (*PackageInfo, bool) {
	info, ok := l.infos[names.Normalize(name)]
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

func (l *Local) Canonicalize(name string) (string, bool) {
	info, ok := l.infos[names.Normalize(name)]
	if !ok {
		return "", false
	}
	return info.Name, true
}

func (l *Local) Load(name, version string) (*Package, error) {
	info, ok := l.infos[names.Normalize(name)]
	if !ok {
		return nil, fmt.Errorf("package %s is not part of the workspace", name)
	}

	bundlePath := filepath.Join(l.docDir, names.LibName(info.Name)+".json")
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("no generated documentation for %s (expected %s; run `cargo doc`): %w",
			info.Name, bundlePath, err)
	}

	return NewPackage(info.Name, info.Version, OriginLocal, bundlePath, data)
}

func (l *Local) ListAvailable() []PackageInfo {
	infos := make([]PackageInfo, 0, len(l.infos))
	for _, info := range l.infos {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Default != infos[j].Default {
			return infos[i].Default
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
