package source

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/names"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"
)

const metaCacheTTL = 10 * time.Minute

// Registry fetches documentation bundles from docs.rs on demand, with a
// persistent on-disk cache keyed by (name, resolved version). It has no
// enumerable package list: ListAvailable reports only what the cache
// already holds.
type Registry struct {
	cfg      config.RegistryConfig
	client   *http.Client
	cacheDir string

	metaMu sync.RWMutex
	meta   map[string]metaEntry
	group  singleflight.Group
}

type metaEntry struct {
	meta     *crateMeta
	notFound bool
	expiry   time.Time
}

type crateMeta struct {
	Crate struct {
		Name             string  `json:"name"`
		Description      *string `json:"description"`
		MaxStableVersion *string `json:"max_stable_version"`
		MaxVersion       *string `json:"max_version"`
	} `json:"crate"`
	Versions []struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"versions"`
}

func NewRegistry(cfg config.RegistryConfig, cacheDir string) *Registry {
	if cacheDir == "" {
		cacheDir = config.BundleCacheDir()
	}
	return &Registry{
		cfg:      cfg,
		client:   &http.Client{Timeout: 60 * time.Second},
		cacheDir: cacheDir,
		meta:     make(map[string]metaEntry),
	}
}

func (r *Registry) Origin() Origin { return OriginRegistry }

func (r *Registry) Lookup(name, requirement string) (*PackageInfo, bool) {
	// An exact requirement already satisfied by the cache needs no network.
	if isExactVersion(requirement) && r.hasBundle(name, requirement) {
		return &PackageInfo{
			Name:    name,
			Version: requirement,
			Path:    r.bundleCachePath(name, requirement),
			Origin:  OriginRegistry,
		}, true
	}

	meta, err := r.fetchMeta(name)
	if err != nil {
		return nil, false
	}
	version, err := resolveVersion(meta, requirement)
	if err != nil {
		return nil, false
	}
	info := &PackageInfo{Name: meta.Crate.Name, Version: version, Origin: OriginRegistry}
	if meta.Crate.Description != nil {
		info.Description = *meta.Crate.Description
	}
	if r.hasBundle(info.Name, version) {
		info.Path = r.bundleCachePath(info.Name, version)
	}
	return info, true
}

func (r *Registry) Canonicalize(name string) (string, bool) {
	meta, err := r.fetchMeta(name)
	if err != nil {
		return "", false
	}
	return meta.Crate.Name, true
}

func (r *Registry) Load(name, version string) (*Package, error) {
	if version == "" || version == "latest" || !isExactVersion(version) {
		meta, err := r.fetchMeta(name)
		if err != nil {
			return nil, err
		}
		name = meta.Crate.Name
		version, err = resolveVersion(meta, version)
		if err != nil {
			return nil, err
		}
	}

	key := name + "@" + version
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.load(name, version)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Package), nil
}

func (r *Registry) load(name, version string) (*Package, error) {
	if data, err := r.loadBundle(name, version); err == nil {
		return NewPackage(name, version, OriginRegistry, r.bundleCachePath(name, version), data)
	}

	data, err := r.fetchBundle(name, version)
	if err != nil {
		return nil, err
	}

	pkg, err := NewPackage(name, version, OriginRegistry, "", data)
	if err != nil {
		return nil, err
	}

	// Cache under the resolved version. Last write wins; the content is
	// reproducible from the same source, so racing writers are harmless.
	if err := r.saveBundle(data, name, pkg.Version); err != nil {
		slog.Warn("failed to cache registry bundle", "package", name, "version", pkg.Version, "error", err)
	} else {
		pkg.CachePath = r.bundleCachePath(name, pkg.Version)
	}
	return pkg, nil
}

// fetchBundle downloads and decompresses a bundle from docs.rs. docs.rs
// resolves "latest" itself via redirect.
func (r *Registry) fetchBundle(name, version string) ([]byte, error) {
	if version == "" {
		version = "latest"
	}

	u := fmt.Sprintf("%s/crate/%s/%s/json", r.cfg.BaseURL, name, version)

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("registry returned %d for %s/%s: %s", resp.StatusCode, name, version, string(body))
	}

	// docs.rs serves zstd-compressed JSON
	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing bundle: %w", err)
	}
	return data, nil
}

func (r *Registry) fetchMeta(name string) (*crateMeta, error) {
	key := names.Normalize(name)

	r.metaMu.RLock()
	entry, ok := r.meta[key]
	r.metaMu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		if entry.notFound {
			return nil, fmt.Errorf("package %s not found in registry (cached)", name)
		}
		return entry.meta, nil
	}

	u := fmt.Sprintf("%s/api/v1/crates/%s", r.cfg.MetadataURL, url.PathEscape(name))
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying registry metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.setMeta(key, metaEntry{notFound: true, expiry: time.Now().Add(metaCacheTTL)})
		return nil, fmt.Errorf("package %s not found in registry", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry metadata returned %d for %s", resp.StatusCode, name)
	}

	var meta crateMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding registry metadata: %w", err)
	}

	r.setMeta(key, metaEntry{meta: &meta, expiry: time.Now().Add(metaCacheTTL)})
	return &meta, nil
}

func (r *Registry) setMeta(key string, entry metaEntry) {
	r.metaMu.Lock()
	r.meta[key] = entry
	r.metaMu.Unlock()
}

// resolveVersion picks the best version from registry metadata for a
// requirement: empty or "latest" takes the newest stable release, an exact
// version is matched literally, anything else is treated as a semver range.
func resolveVersion(meta *crateMeta, requirement string) (string, error) {
	if requirement == "" || requirement == "latest" {
		if meta.Crate.MaxStableVersion != nil && *meta.Crate.MaxStableVersion != "" {
			return *meta.Crate.MaxStableVersion, nil
		}
		if meta.Crate.MaxVersion != nil && *meta.Crate.MaxVersion != "" {
			return *meta.Crate.MaxVersion, nil
		}
		return "", fmt.Errorf("no versions published for %s", meta.Crate.Name)
	}

	if isExactVersion(requirement) {
		for _, v := range meta.Versions {
			if v.Num == requirement && !v.Yanked {
				return v.Num, nil
			}
		}
		return "", fmt.Errorf("version %s of %s not found", requirement, meta.Crate.Name)
	}

	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return "", fmt.Errorf("invalid version requirement %q: %w", requirement, err)
	}

	var best *semver.Version
	for _, v := range meta.Versions {
		if v.Yanked {
			continue
		}
		sv, err := semver.NewVersion(v.Num)
		if err != nil {
			continue
		}
		if constraint.Check(sv) && (best == nil || sv.GreaterThan(best)) {
			best = sv
		}
	}
	if best == nil {
		return "", fmt.Errorf("no version of %s matches %q", meta.Crate.Name, requirement)
	}
	return best.Original(), nil
}

// isExactVersion reports whether s is a bare version rather than a range.
func isExactVersion(s string) bool {
	if s == "" || s == "latest" {
		return false
	}
	if strings.ContainsAny(s, "^~*<>=, ") {
		return false
	}
	_, err := semver.StrictNewVersion(s)
	return err == nil
}

func (r *Registry) bundleCachePath(name, version string) string {
	return filepath.Join(r.cacheDir, name+"_"+version+".json.zst")
}

func (r *Registry) hasBundle(name, version string) bool {
	_, err := os.Stat(r.bundleCachePath(name, version))
	return err == nil
}

// saveBundle compresses and writes bundle bytes to the cache.
func (r *Registry) saveBundle(data []byte, name, version string) error {
	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return fmt.Errorf("creating bundle cache dir: %w", err)
	}

	f, err := os.Create(r.bundleCachePath(name, version))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed bundle: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// loadBundle reads and decompresses a cached bundle.
func (r *Registry) loadBundle(name, version string) ([]byte, error) {
	f, err := os.Open(r.bundleCachePath(name, version))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing cached bundle: %w", err)
	}
	return data, nil
}

func (r *Registry) ListAvailable() []PackageInfo {
	entries, err := os.ReadDir(r.cacheDir)
	if err != nil {
		return nil
	}

	var infos []PackageInfo
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".json.zst")
		if !ok {
			continue
		}
		idx := strings.LastIndex(base, "_")
		if idx <= 0 {
			continue
		}
		infos = append(infos, PackageInfo{
			Name:    base[:idx],
			Version: base[idx+1:],
			Path:    filepath.Join(r.cacheDir, e.Name()),
			Origin:  OriginRegistry,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Version < infos[j].Version
	})
	return infos
}
