package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sci/internal/types"
)

func TestRegistry_LanguageForExt(t *testing.T) {
	r := NewRegistry()

	lang, ok := r.LanguageForExt(".cpp")
	require.True(t, ok)
	assert.Equal(t, "cpp", lang)

	lang, ok = r.LanguageForExt(".GO")
	require.True(t, ok)
	assert.Equal(t, "go", lang)

	lang, ok = r.LanguageForExt(".kt")
	require.True(t, ok)
	assert.Equal(t, "kotlin", lang)

	_, ok = r.LanguageForExt(".xyz")
	assert.False(t, ok)
}

func TestRegistry_HasParser(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.HasParser(".go"))
	assert.True(t, r.HasParser(".rs"))
	assert.False(t, r.HasParser(".kt"), "kotlin is pattern-only")
	assert.False(t, r.HasParser(".xyz"))
}

func newTreeExtractor() *SyntaxTreeExtractor {
	return NewSyntaxTreeExtractor(NewRegistry(), Options{
		MinComplexity:    1,
		MaxDeepFunctions: 50,
		BuildFlowPaths:   true,
	})
}

func TestTree_GoSource(t *testing.T) {
	source := `package widgets

import "fmt"

type Gadget struct {
	name string
}

func (g *Gadget) Describe() string {
	if g.name == "" {
		return "unnamed"
	}
	for i := 0; i < 3; i++ {
		fmt.Println(g.name)
	}
	return g.name
}

func New(name string) *Gadget {
	return &Gadget{name: name}
}
`
	result, err := newTreeExtractor().Extract(context.Background(), "gadget.go", []byte(source))
	require.NoError(t, err)
	assert.Equal(t, types.StrategySyntaxTree, result.Strategy)
	assert.Equal(t, "go", result.Language)

	describe, ok := findSymbol(result, "Describe")
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindMethod, describe.Kind)
	assert.Equal(t, 9, describe.StartLine)
	assert.Equal(t, 17, describe.EndLine)

	newFn, ok := findSymbol(result, "New")
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindFunction, newFn.Kind)
	assert.True(t, newFn.IsExported)

	var blockTypes []types.BlockType
	for _, b := range result.ControlFlowData.Blocks {
		if b.ParentBlockID != "" || b.BlockType == types.BlockEntry {
			blockTypes = append(blockTypes, b.BlockType)
		}
	}
	assert.Contains(t, blockTypes, types.BlockConditional)
	assert.Contains(t, blockTypes, types.BlockLoop)

	var printCall *types.ControlFlowCall
	for i := range result.ControlFlowData.Calls {
		if result.ControlFlowData.Calls[i].TargetFunction == "Println" {
			printCall = &result.ControlFlowData.Calls[i]
		}
	}
	require.NotNil(t, printCall)
	assert.Equal(t, "Describe", printCall.CallerName)
	assert.Equal(t, types.CallMethod, printCall.CallType)
	assert.True(t, printCall.IsInLoop)

	var imports []string
	for _, rel := range result.Relationships {
		if rel.RelationshipType == types.RelationshipImports {
			imports = append(imports, rel.ToName)
		}
	}
	assert.Contains(t, imports, "fmt")
}

func TestTree_CppQualifiedMethod(t *testing.T) {
	source := `namespace audio {
class Mixer {
public:
    void reset();
};

void Mixer::reset() {
    if (active_) {
        stop();
    }
}
}
`
	result, err := newTreeExtractor().Extract(context.Background(), "mixer.cpp", []byte(source))
	require.NoError(t, err)

	mixer, ok := findSymbol(result, "audio::Mixer")
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindClass, mixer.Kind)

	// Out-of-class definitions keep their written qualifier; resolution
	// walks the enclosing namespace chain at lookup time.
	reset, ok := findSymbol(result, "Mixer::reset")
	require.True(t, ok)
	assert.Equal(t, "reset", reset.Name)
	assert.True(t, reset.IsDefinition)

	var stopCall *types.Relationship
	for i := range result.Relationships {
		rel := &result.Relationships[i]
		if rel.RelationshipType == types.RelationshipCalls && rel.ToName == "stop" {
			stopCall = rel
		}
	}
	require.NotNil(t, stopCall)
	assert.Equal(t, "Mixer::reset", stopCall.FromName)
	assert.True(t, stopCall.IsConditional)
}

func TestTree_PythonMethodsNotDuplicated(t *testing.T) {
	source := `class Store:
    def get(self, key):
        return self.data[key]

def standalone():
    return 1
`
	result, err := newTreeExtractor().Extract(context.Background(), "store.py", []byte(source))
	require.NoError(t, err)

	var gets int
	for _, s := range result.Symbols {
		if s.Name == "get" {
			gets++
			assert.Equal(t, types.SymbolKindMethod, s.Kind)
		}
	}
	assert.Equal(t, 1, gets, "scoped and unscoped patterns must not double-count")

	standalone, ok := findSymbol(result, "standalone")
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindFunction, standalone.Kind)
}

func TestTree_FieldAccessEdges(t *testing.T) {
	source := `namespace audio {
class Mixer {
public:
    void balance() {
        if (peer.level == 0) {
            return;
        }
        peer.level += 1;
        this->gain_ = peer.level;
    }
private:
    int gain_;
};
}
`
	result, err := newTreeExtractor().Extract(context.Background(), "mixer.cpp", []byte(source))
	require.NoError(t, err)

	var reads, writes int
	for _, rel := range result.Relationships {
		switch rel.RelationshipType {
		case types.RelationshipReadsField:
			reads++
			assert.Equal(t, "peer.level", rel.ToName)
		case types.RelationshipWritesField:
			writes++
			assert.Equal(t, "Mixer::balance", rel.FromName)
			assert.Equal(t, "peer.level", rel.ToName)
		}
	}
	assert.GreaterOrEqual(t, reads, 1)
	assert.Equal(t, 1, writes)
}

func TestTree_OneLineFunctionKeepsCallsWithoutFlow(t *testing.T) {
	source := `namespace A {
void f() { if (x) { for (;;) { g(); } } }
}
`
	result, err := newTreeExtractor().Extract(context.Background(), "tight.cpp", []byte(source))
	require.NoError(t, err)

	_, ok := findSymbol(result, "A::f")
	require.True(t, ok)

	var call *types.Relationship
	for i := range result.Relationships {
		rel := &result.Relationships[i]
		if rel.RelationshipType == types.RelationshipCalls && rel.ToName == "g" {
			call = rel
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, "A::f", call.FromName)

	for _, b := range result.ControlFlowData.Blocks {
		assert.NotEqual(t, "A::f", b.SymbolName)
	}
	assert.Equal(t, 0, result.Stats.ControlFlowAnalyzed)
}

func TestTree_UnsupportedExtension(t *testing.T) {
	_, err := newTreeExtractor().Extract(context.Background(), "notes.txt", []byte("hello"))
	assert.Error(t, err)
}

func TestTree_PatternOnlyLanguageHasNoParser(t *testing.T) {
	_, err := newTreeExtractor().Extract(context.Background(), "app.kt", []byte("fun main() {}"))
	assert.Error(t, err)
}

func TestTree_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTreeExtractor().Extract(ctx, "gadget.go", []byte("package x"))
	assert.Error(t, err)
}
