package source

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/names"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serdeMeta = `{
	"crate": {
		"name": "serde",
		"description": "Serialization framework",
		"max_stable_version": "1.0.210",
		"max_version": "1.0.210"
	},
	"versions": [
		{"num": "1.0.210", "yanked": false},
		{"num": "1.0.200", "yanked": false},
		{"num": "1.0.199", "yanked": true},
		{"num": "0.9.15", "yanked": false}
	]
}`

func testRegistry(t *testing.T) (*Registry, *atomic.Int64) {
	t.Helper()
	var bundleFetches atomic.Int64

	mux := http.NewServeMux()
	// crates.io matches names case- and separator-insensitively.
	mux.HandleFunc("/api/v1/crates/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/v1/crates/")
		if names.Normalize(name) != "serde" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(serdeMeta))
	})
	mux.HandleFunc("/crate/serde/", func(w http.ResponseWriter, r *http.Request) {
		bundleFetches.Add(1)
		zw, err := zstd.NewWriter(w)
		require.NoError(t, err)
		zw.Write(testBundle(t, "serde"))
		zw.Close()
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.RegistryConfig{BaseURL: srv.URL, MetadataURL: srv.URL, UserAgent: "test"}
	return NewRegistry(cfg, t.TempDir()), &bundleFetches
}

func TestRegistry_Lookup_Latest(t *testing.T) {
	r, _ := testRegistry(t)

	info, ok := r.Lookup("serde", "latest")
	require.True(t, ok)
	assert.Equal(t, "serde", info.Name)
	assert.Equal(t, "1.0.210", info.Version)
	assert.Equal(t, "Serialization framework", info.Description)
}

func TestRegistry_Lookup_Range(t *testing.T) {
	r, _ := testRegistry(t)

	info, ok := r.Lookup("serde", "^0.9")
	require.True(t, ok)
	assert.Equal(t, "0.9.15", info.Version)

	_, ok = r.Lookup("serde", "^2.0")
	assert.False(t, ok, "no published version matches ^2.0")
}

func TestRegistry_Lookup_SkipsYanked(t *testing.T) {
	r, _ := testRegistry(t)

	_, err := resolveVersionForTest(r, "1.0.199")
	assert.Error(t, err, "yanked versions must not resolve")
}

func resolveVersionForTest(r *Registry, requirement string) (string, error) {
	meta, err := r.fetchMeta("serde")
	if err != nil {
		return "", err
	}
	return resolveVersion(meta, requirement)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	r, _ := testRegistry(t)

	_, ok := r.Lookup("no-such-crate", "latest")
	assert.False(t, ok)
}

func TestRegistry_Load_CachesBundle(t *testing.T) {
	r, fetches := testRegistry(t)

	pkg, err := r.Load("serde", "1.0.210")
	require.NoError(t, err)
	assert.Equal(t, "serde", pkg.Name)
	assert.Equal(t, OriginRegistry, pkg.Origin)
	require.NotNil(t, pkg.Crate)
	assert.EqualValues(t, 1, fetches.Load())

	// Second load is served from the on-disk cache.
	again, err := r.Load("serde", pkg.Version)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetches.Load())
	assert.Equal(t, pkg.ContentHash, again.ContentHash)
}

func TestRegistry_Canonicalize(t *testing.T) {
	r, _ := testRegistry(t)

	name, ok := r.Canonicalize("Serde")
	require.True(t, ok)
	assert.Equal(t, "serde", name)
}

func TestRegistry_ListAvailable_CacheOnly(t *testing.T) {
	r, _ := testRegistry(t)

	assert.Empty(t, r.ListAvailable(), "empty cache lists nothing")

	_, err := r.Load("serde", "1.0.210")
	require.NoError(t, err)

	infos := r.ListAvailable()
	require.Len(t, infos, 1)
	assert.Equal(t, "serde", infos[0].Name)
}

func TestIsExactVersion(t *testing.T) {
	exact := []string{"1.0.210", "0.9.15"}
	for _, v := range exact {
		assert.True(t, isExactVersion(v), v)
	}
	inexact := []string{"", "latest", "^1.0", ">=1, <2", "~0.9", "1.0"}
	for _, v := range inexact {
		assert.False(t, isExactVersion(v), v)
	}
}
