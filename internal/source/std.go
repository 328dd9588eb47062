package source

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jbr/ferritin-sub001/internal/names"
)

// stdCrates is the fixed, enumerable set of standard-library crates the
// toolchain advertises. "test" is advertised without a shipped bundle and
// can never be loaded.
var stdCrates = []string{"std", "core", "alloc", "proc_macro", "test"}

const unshippedStdCrate = "test"

// Std serves the standard library's documentation bundles, located via the
// active toolchain's sysroot.
type Std struct {
	docDir  string
	version string
}

// NewStd locates the installed toolchain docs. Returns an UnavailableError
// when no toolchain or no JSON docs component is installed.
func NewStd() (*Std, error) {
	out, err := exec.Command("rustc", "--print", "sysroot").Output()
	if err != nil {
		return nil, &UnavailableError{Origin: OriginStd, Err: fmt.Errorf("rustc --print sysroot: %w", err)}
	}
	sysroot := strings.TrimSpace(string(out))

	docDir := filepath.Join(sysroot, "share", "doc", "rust", "json")
	if _, err := os.Stat(docDir); err != nil {
		return nil, &UnavailableError{Origin: OriginStd, Err: fmt.Errorf("no JSON docs at %s: %w", docDir, err)}
	}

	return &Std{docDir: docDir, version: rustcVersion()}, nil
}

// rustcVersion extracts the bare version from `rustc --version` output
// ("rustc 1.80.0 (abc 2024-01-01)" → "1.80.0"). Best effort.
func rustcVersion() string {
	out, err := exec.Command("rustc", "--version").Output()
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (s *Std) Origin() Origin { return OriginStd }

func (s *Std) contains(name string) (string, bool) {
	normalized := names.Normalize(name)
	for _, c := range stdCrates {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

func (s *Std) Lookup(name, requirement string) (*PackageInfo, bool) {
	crate, ok := s.contains(name)
	if !ok {
		return nil, false
	}
	info := &PackageInfo{Name: crate, Version: s.version, Origin: OriginStd}
	if crate != unshippedStdCrate {
		info.Path = filepath.Join(s.docDir, crate+".json")
	}
	return info, true
}

func (s *Std) Canonicalize(name string) (string, bool) {
	return s.contains(name)
}

func (s *Std) Load(name, version string) (*Package, error) {
	crate, ok := s.contains(name)
	if !ok {
		return nil, fmt.Errorf("%s is not a standard-library crate", name)
	}
	if crate == unshippedStdCrate {
		return nil, fmt.Errorf("crate %s is advertised by the toolchain but ships no documentation bundle", crate)
	}

	bundlePath := filepath.Join(s.docDir, crate+".json")
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", bundlePath, err)
	}

	return NewPackage(crate, s.version, OriginStd, bundlePath, data)
}

func (s *Std) ListAvailable() []PackageInfo {
	infos := make([]PackageInfo, 0, len(stdCrates))
	for _, crate := range stdCrates {
		info, _ := s.Lookup(crate, "")
		infos = append(infos, *info)
	}
	return infos
}
