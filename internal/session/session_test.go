package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbr/ferritin-sub001/internal/config"
	"github.com/jbr/ferritin-sub001/internal/nav"
	"github.com/jbr/ferritin-sub001/internal/source"
)

// memSource serves one in-memory package named "demo" with a public
// struct Foo (one impl method new), and a private function hidden.
type memSource struct {
	pkg *source.Package
}

func newMemSource(t *testing.T) *memSource {
	t.Helper()
	bundle := map[string]any{
		"root":            0,
		"format_version":  46,
		"paths":           map[string]any{},
		"external_crates": map[string]any{},
		"index": map[string]any{
			"0": map[string]any{
				"id": 0, "crate_id": 0, "name": "demo", "visibility": "public",
				"inner": map[string]any{"module": map[string]any{"is_crate": true, "items": []int{1, 2}}},
			},
			"1": map[string]any{
				"id": 1, "crate_id": 0, "name": "Foo", "visibility": "public",
				"docs":  "A thing.",
				"inner": map[string]any{"struct": map[string]any{"kind": map[string]any{"unit": map[string]any{}}, "impls": []int{3}}},
			},
			"2": map[string]any{
				"id": 2, "crate_id": 0, "name": "hidden", "visibility": "crate",
				"inner": map[string]any{"function": map[string]any{}},
			},
			"3": map[string]any{
				"id": 3, "crate_id": 0, "visibility": "default",
				"inner": map[string]any{"impl": map[string]any{"trait": nil, "for": map[string]any{}, "items": []int{4}}},
			},
			"4": map[string]any{
				"id": 4, "crate_id": 0, "name": "new", "visibility": "default",
				"inner": map[string]any{"function": map[string]any{}},
			},
		},
	}
	data, err := json.Marshal(bundle)
	require.NoError(t, err)
	pkg, err := source.NewPackage("demo", "1.0.0", source.OriginLocal, "", data)
	require.NoError(t, err)
	return &memSource{pkg: pkg}
}

func (m *memSource) Origin() source.Origin { return source.OriginLocal }

func (m *memSource) Lookup(name, requirement string) (*source.PackageInfo, bool) {
	if name != "demo" {
		return nil, false
	}
	return &source.PackageInfo{Name: "demo", Version: m.pkg.Version}, true
}

func (m *memSource) Canonicalize(name string) (string, bool) {
	return "demo", name == "demo"
}

func (m *memSource) Load(name, version string) (*source.Package, error) {
	if name != "demo" {
		return nil, errors.New("no such package")
	}
	return m.pkg, nil
}

func (m *memSource) ListAvailable() []source.PackageInfo {
	return []source.PackageInfo{{Name: "demo", Version: m.pkg.Version, Origin: source.OriginLocal}}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	n := nav.New(config.NavConfig{MaxSuggestions: 3}, newMemSource(t))
	s := New(n)
	t.Cleanup(s.Close)
	return s
}

// await polls like an interactive caller would, with a deadline so a hung
// worker fails the test instead of wedging it.
func await(t *testing.T, s *Session) Response {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if resp, ok := s.Poll(); ok {
			return resp
		}
		select {
		case <-deadline:
			t.Fatal("no response from engine worker")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSessionResolve(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.Submit(Request{Kind: KindResolve, Path: "demo::Foo"}))
	resp := await(t, s)
	require.NoError(t, resp.Err)
	require.NotNil(t, resp.Doc)
	assert.Equal(t, "Foo", resp.Doc.Name)
	assert.Equal(t, "struct", resp.Doc.Kind)
	assert.Equal(t, "A thing.", resp.Doc.Docs)
}

func TestSessionResolveNotFound(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.Submit(Request{Kind: KindResolve, Path: "demo::Fop"}))
	resp := await(t, s)
	var nf *nav.NotFoundError
	require.ErrorAs(t, resp.Err, &nf)
	assert.NotEmpty(t, nf.Suggestions)
}

func TestSessionList(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.Submit(Request{Kind: KindList}))
	resp := await(t, s)
	require.Len(t, resp.Packages, 1)
	assert.Equal(t, "demo", resp.Packages[0].Name)
}

func TestSessionToggleShowPrivate(t *testing.T) {
	s := newTestSession(t)

	// Private children are hidden by default.
	require.NoError(t, s.Submit(Request{Kind: KindResolve, Path: "demo"}))
	resp := await(t, s)
	require.NoError(t, resp.Err)
	assert.Equal(t, []string{"Foo"}, resp.Doc.Children)

	require.NoError(t, s.Submit(Request{Kind: KindToggle, Option: OptionShowPrivate}))
	resp = await(t, s)
	assert.True(t, resp.Options[OptionShowPrivate])

	require.NoError(t, s.Submit(Request{Kind: KindResolve, Path: "demo"}))
	resp = await(t, s)
	require.NoError(t, resp.Err)
	assert.Equal(t, []string{"Foo", "hidden"}, resp.Doc.Children)
}

func TestSessionImplMethodListedWithoutShowPrivate(t *testing.T) {
	s := newTestSession(t)

	// rustdoc tags impl methods with "default" visibility; they are still
	// part of the type's public surface.
	require.NoError(t, s.Submit(Request{Kind: KindResolve, Path: "demo::Foo"}))
	resp := await(t, s)
	require.NoError(t, resp.Err)
	assert.Equal(t, []string{"new"}, resp.Doc.Children)
}

func TestSessionOneOutstandingRequest(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.Submit(Request{Kind: KindList}))
	// The second submit may race the worker picking up the first; only
	// ErrBusy or success are acceptable, never a block.
	if err := s.Submit(Request{Kind: KindList}); err != nil {
		assert.ErrorIs(t, err, ErrBusy)
	} else {
		await(t, s)
	}
	await(t, s)
}

func TestSessionSubmitAfterClose(t *testing.T) {
	n := nav.New(config.NavConfig{}, newMemSource(t))
	s := New(n)
	s.Close()
	assert.ErrorIs(t, s.Submit(Request{Kind: KindList}), ErrClosed)
}
