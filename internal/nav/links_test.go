package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLinkFragment(t *testing.T) {
	n := demoNavigator(t)

	link := n.ResolveLink(ItemHandle{}, "#examples")
	assert.Equal(t, LinkFragment, link.Kind)
	assert.Equal(t, "#examples", link.Target)
}

func TestResolveLinkExternal(t *testing.T) {
	n := demoNavigator(t)

	link := n.ResolveLink(ItemHandle{}, "https://docs.rs/serde")
	assert.Equal(t, LinkExternal, link.Kind)
	assert.Equal(t, "https://docs.rs/serde", link.Target)
}

func TestResolveLinkPreResolved(t *testing.T) {
	n := demoNavigator(t)

	origin, err := n.ResolvePath("demo::Widget")
	require.NoError(t, err)
	origin.Item().Links = map[string]int{"Foo": 1}

	link := n.ResolveLink(origin, "Foo")
	require.Equal(t, LinkItem, link.Kind)
	assert.Equal(t, "Foo", link.Item.Name())
}

func TestResolveLinkDisambiguatorHint(t *testing.T) {
	n := demoNavigator(t)

	origin, err := n.ResolvePath("demo::Widget")
	require.NoError(t, err)
	origin.Item().Links = map[string]int{"Foo": 1}

	link := n.ResolveLink(origin, "struct@Foo")
	require.Equal(t, LinkItem, link.Kind)
	assert.Equal(t, "Foo", link.Item.Name())
}

func TestResolveLinkBareHeuristic(t *testing.T) {
	n := demoNavigator(t)

	origin, err := n.ResolvePath("demo::Foo")
	require.NoError(t, err)

	link := n.ResolveLink(origin, "Widget")
	require.Equal(t, LinkItem, link.Kind)
	assert.Equal(t, "Widget", link.Item.Name())
}

func TestResolveLinkSelfQualified(t *testing.T) {
	n := demoNavigator(t)

	origin, err := n.ResolvePath("demo::Foo")
	require.NoError(t, err)

	link := n.ResolveLink(origin, "self::util::helper")
	require.Equal(t, LinkItem, link.Kind)
	assert.Equal(t, "helper", link.Item.Name())
}

func TestResolveLinkUnresolved(t *testing.T) {
	n := demoNavigator(t)

	origin, err := n.ResolvePath("demo::Foo")
	require.NoError(t, err)

	link := n.ResolveLink(origin, "NoSuchThing")
	assert.Equal(t, LinkUnresolved, link.Kind)
	assert.Equal(t, "NoSuchThing", link.Target)
}

func TestResolveLinkMalformedNeverFails(t *testing.T) {
	n := demoNavigator(t)

	for _, text := range []string{"", "@", "struct@", "::", "a::::b"} {
		link := n.ResolveLink(ItemHandle{}, text)
		assert.Equal(t, LinkUnresolved, link.Kind, "input %q", text)
	}
}
