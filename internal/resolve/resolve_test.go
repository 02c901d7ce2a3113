package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sci/internal/types"
)

func entry(qualified, file string, kind types.SymbolKind) Entry {
	return Entry{QualifiedName: qualified, Kind: kind, FilePath: file, StartLine: 1, EndLine: 10}
}

func TestCache_InsertAndLookup(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("ns::helper", "a.cpp", types.SymbolKindFunction))

	e, ok := c.Lookup("ns::helper")
	require.True(t, ok)
	assert.Equal(t, "ns::helper", e.QualifiedName)
	assert.Equal(t, "a.cpp", e.FilePath)

	_, ok = c.Lookup("ns::missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Insertions)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCache_LookupBaseFindsAllShardsWorth(t *testing.T) {
	c := NewCache(100, 8)
	c.Insert(entry("a::run", "a.cpp", types.SymbolKindFunction))
	c.Insert(entry("b::run", "b.cpp", types.SymbolKindFunction))
	c.Insert(entry("c::walk", "c.cpp", types.SymbolKindFunction))

	found := c.LookupBase("run")
	require.Len(t, found, 2)
	assert.Empty(t, c.LookupBase("sprint"))
}

func TestCache_ReplaceFileDropsStaleEntries(t *testing.T) {
	c := NewCache(100, 4)
	c.ReplaceFile("x.cpp", []Entry{
		entry("old::one", "", types.SymbolKindFunction),
		entry("old::two", "", types.SymbolKindFunction),
	})
	require.Equal(t, 2, c.Len())

	c.ReplaceFile("x.cpp", []Entry{entry("fresh::one", "", types.SymbolKindFunction)})
	assert.Equal(t, 1, c.Len())

	_, ok := c.Lookup("old::one")
	assert.False(t, ok)
	e, ok := c.Lookup("fresh::one")
	require.True(t, ok)
	assert.Equal(t, "x.cpp", e.FilePath)
}

func TestCache_RemoveFile(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("keep::f", "keep.cpp", types.SymbolKindFunction))
	c.Insert(entry("drop::f", "drop.cpp", types.SymbolKindFunction))

	c.RemoveFile("drop.cpp")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup("drop::f")
	assert.False(t, ok)
	_, ok = c.Lookup("keep::f")
	assert.True(t, ok)
}

func TestCache_EvictionPrefersColdEntries(t *testing.T) {
	// Single shard so capacity applies to everything inserted.
	c := NewCache(8, 1)
	for i := 0; i < 8; i++ {
		c.Insert(entry(fmt.Sprintf("ns::f%d", i), "f.cpp", types.SymbolKindFunction))
	}
	// Warm everything except f0.
	for i := 1; i < 8; i++ {
		for j := 0; j <= i; j++ {
			_, ok := c.Lookup(fmt.Sprintf("ns::f%d", i))
			require.True(t, ok)
		}
	}

	c.Insert(entry("ns::f8", "f.cpp", types.SymbolKindFunction))

	assert.Equal(t, 8, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
	_, ok := c.Lookup("ns::f0")
	assert.False(t, ok, "cold entry should be the eviction victim")
	_, ok = c.Lookup("ns::f7")
	assert.True(t, ok)
}

func TestCache_ReinsertKeepsAccessHistory(t *testing.T) {
	c := NewCache(8, 1)
	c.Insert(entry("ns::hot", "f.cpp", types.SymbolKindFunction))
	for i := 0; i < 10; i++ {
		c.Lookup("ns::hot")
	}
	// Re-parse overwrites the entry without resetting its heat.
	c.Insert(entry("ns::hot", "f.cpp", types.SymbolKindFunction))

	for i := 0; i < 8; i++ {
		c.Insert(entry(fmt.Sprintf("ns::g%d", i), "g.cpp", types.SymbolKindFunction))
	}
	_, ok := c.Lookup("ns::hot")
	assert.True(t, ok, "hot entry must survive eviction pressure after re-insert")
}

func TestResolve_ExactQualified(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("app::core::Init", "i.cpp", types.SymbolKindFunction))

	e, ok := c.Resolve("app::core::Init", nil)
	require.True(t, ok)
	assert.Equal(t, "app::core::Init", e.QualifiedName)
}

func TestResolve_CurrentNamespaceWalksOutward(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("app::log", "l.cpp", types.SymbolKindFunction))

	ctx := &Context{FilePath: "m.cpp", Namespace: "app::core::detail"}
	e, ok := c.Resolve("log", ctx)
	require.True(t, ok)
	assert.Equal(t, "app::log", e.QualifiedName)
}

func TestResolve_ImportedNamespaces(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("vendor::json::parse", "j.cpp", types.SymbolKindFunction))

	ctx := &Context{FilePath: "m.cpp", Imports: []string{"vendor::json"}}
	e, ok := c.Resolve("parse", ctx)
	require.True(t, ok)
	assert.Equal(t, "vendor::json::parse", e.QualifiedName)
}

func TestResolve_BareNamePrefersSameFile(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("a::init", "a.cpp", types.SymbolKindFunction))
	c.Insert(entry("b::init", "b.cpp", types.SymbolKindFunction))

	ctx := &Context{FilePath: "b.cpp"}
	e, ok := c.Resolve("init", ctx)
	require.True(t, ok)
	assert.Equal(t, "b::init", e.QualifiedName)
}

func TestResolve_AliasExpansion(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("std::filesystem::path", "fs.cpp", types.SymbolKindClass))

	ctx := &Context{
		FilePath: "m.cpp",
		Aliases:  map[string]string{"fs": "std::filesystem"},
	}
	e, ok := c.Resolve("fs::path", ctx)
	require.True(t, ok)
	assert.Equal(t, "std::filesystem::path", e.QualifiedName)
}

func TestResolve_OrderExactBeatsNamespace(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("util::copy", "u.cpp", types.SymbolKindFunction))
	c.Insert(entry("app::util::copy", "a.cpp", types.SymbolKindFunction))

	ctx := &Context{FilePath: "m.cpp", Namespace: "app"}
	e, ok := c.Resolve("util::copy", ctx)
	require.True(t, ok)
	assert.Equal(t, "util::copy", e.QualifiedName, "exact qualified match wins over namespace qualification")
}

func TestResolve_Miss(t *testing.T) {
	c := NewCache(100, 4)
	_, ok := c.Resolve("nothing", &Context{FilePath: "m.cpp"})
	assert.False(t, ok)
}

func TestSuggest_NearMisses(t *testing.T) {
	c := NewCache(100, 4)
	c.Insert(entry("ns::initialize", "a.cpp", types.SymbolKindFunction))
	c.Insert(entry("ns::terminate", "a.cpp", types.SymbolKindFunction))

	suggestions := c.Suggest("initialze", 3)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "initialize", suggestions[0])
}

func TestCache_ShardCountMustBePowerOfTwo(t *testing.T) {
	c := NewCache(100, 3)
	require.NotNil(t, c)
	c.Insert(entry("a::b", "a.cpp", types.SymbolKindFunction))
	_, ok := c.Lookup("a::b")
	assert.True(t, ok)
}
