package search

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbr/ferritin-sub001/internal/source"
)

// testPackage builds an in-memory package with a root module holding
// one function item per (name, docs) pair.
func testPackage(t *testing.T, name string, docs map[string]string) *source.Package {
	t.Helper()

	index := map[string]any{}
	var itemIDs []int
	id := 1
	for itemName, itemDocs := range docs {
		index[strconv.Itoa(id)] = map[string]any{
			"id":         id,
			"crate_id":   0,
			"name":       itemName,
			"docs":       itemDocs,
			"visibility": "public",
			"inner":      map[string]any{"function": map[string]any{}},
		}
		itemIDs = append(itemIDs, id)
		id++
	}
	index["0"] = map[string]any{
		"id":         0,
		"crate_id":   0,
		"name":       name,
		"visibility": "public",
		"inner":      map[string]any{"module": map[string]any{"is_crate": true, "items": itemIDs}},
	}

	bundle := map[string]any{
		"root":            0,
		"crate_version":   "1.0.0",
		"format_version":  46,
		"index":           index,
		"paths":           map[string]any{},
		"external_crates": map[string]any{},
	}
	data, err := json.Marshal(bundle)
	require.NoError(t, err)

	pkg, err := source.NewPackage(name, "", source.OriginLocal, "", data)
	require.NoError(t, err)
	return pkg
}

func TestBuildIndexesReachableItems(t *testing.T) {
	pkg := testPackage(t, "demo", map[string]string{
		"parse":  "Parses input into a tree.",
		"render": "Renders a tree back to text.",
	})

	idx := Build(pkg)
	assert.Equal(t, 3, idx.Docs) // root module plus two functions
	assert.NotEmpty(t, idx.Postings[HashToken("parse")])
	assert.NotEmpty(t, idx.Postings[HashToken("render")])
	assert.Greater(t, idx.AvgLen, 0.0)
}

func TestQueryNameMatchRanksFirst(t *testing.T) {
	pkg := testPackage(t, "demo", map[string]string{
		"serialize": "Writes a value out.",
		"helper":    "An unrelated helper function.",
	})

	hits := Build(pkg).Query("serialize")
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].IDPath, ":")
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}

	// The matching item is the only hit; the unrelated one scores nothing.
	assert.Len(t, hits, 1)
}

func TestQueryCaseInsensitive(t *testing.T) {
	pkg := testPackage(t, "demo", map[string]string{
		"HashMap": "A keyed collection.",
	})
	idx := Build(pkg)

	assert.NotEmpty(t, idx.Query("hashmap"))
	assert.NotEmpty(t, idx.Query("HASHMAP"))
}

func TestLoadOrBuildCacheRoundTrip(t *testing.T) {
	pkg := testPackage(t, "demo", map[string]string{
		"parse": "Parses input.",
	})
	dir := t.TempDir()

	built, err := LoadOrBuild(pkg, dir)
	require.NoError(t, err)

	loaded, err := LoadOrBuild(pkg, dir)
	require.NoError(t, err)
	assert.Equal(t, built.Docs, loaded.Docs)
	assert.Equal(t, built.AvgLen, loaded.AvgLen)
	assert.Equal(t, built.Lengths, loaded.Lengths)

	wantHits := built.Query("parse")
	gotHits := loaded.Query("parse")
	assert.Equal(t, wantHits, gotHits)
}

func TestCachePathKeyedByContent(t *testing.T) {
	a := testPackage(t, "demo", map[string]string{"parse": "One."})
	b := testPackage(t, "demo", map[string]string{"parse": "Two."})

	assert.NotEqual(t, cachePath("/cache", a), cachePath("/cache", b))
}
