package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/security"
	"github.com/standardbeagle/sci/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const widgetSource = `namespace lib {
class Widget : public Base {
public:
    void render() {
        if (visible_) {
            draw();
        }
        for (int i = 0; i < count_; i++) {
            draw();
        }
    }
};
}
`

// testConfig forces the pattern strategy so tests do not depend on
// compiled grammars.
func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Extraction.SizeThresholdBytes = 0
	cfg.Extraction.Workers = 2
	cfg.Watch.DebounceMs = 20
	return cfg
}

func newTestEngine(t *testing.T, root string) *Engine {
	t.Helper()
	e, err := New(testConfig(root))
	require.NoError(t, err)
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngine_AnalyzeFilePopulatesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.cpp", widgetSource)
	e := newTestEngine(t, dir)

	result, err := e.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, types.StrategyPattern, result.Strategy)

	entry, ok := e.Cache().Lookup("lib::Widget")
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindClass, entry.Kind)
	assert.Equal(t, path, entry.FilePath)
	assert.Contains(t, entry.ChildIDs, "lib::Widget::render")
	assert.Contains(t, entry.InheritsFrom, "Base")

	render, ok := e.Cache().Lookup("lib::Widget::render")
	require.True(t, ok)
	assert.Contains(t, render.Callees, "draw")
}

func TestEngine_ResolveAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writePath := writeFile(t, dir, "widget.cpp", widgetSource)
	userPath := writeFile(t, dir, "user.cpp", `#include "widget.h"
void use() {
    Widget w;
    w.render();
    w.render();
}
`)
	e := newTestEngine(t, dir)
	ctx := context.Background()
	_, err := e.AnalyzeFile(ctx, writePath)
	require.NoError(t, err)
	_, err = e.AnalyzeFile(ctx, userPath)
	require.NoError(t, err)

	entry, ok := e.Resolve("Widget", userPath)
	require.True(t, ok)
	assert.Equal(t, "lib::Widget", entry.QualifiedName)
	assert.Equal(t, writePath, entry.FilePath)

	entry, ok = e.Resolve("lib::Widget::render", userPath)
	require.True(t, ok)
	assert.Equal(t, types.SymbolKindMethod, entry.Kind)
}

func TestEngine_UnchangedContentServedFromCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.cpp", widgetSource)
	e := newTestEngine(t, dir)
	ctx := context.Background()

	first, err := e.AnalyzeFile(ctx, path)
	require.NoError(t, err)
	second, err := e.AnalyzeFile(ctx, path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, e.Stats().FilesFromCache)
	assert.Equal(t, 1, e.Stats().FilesAnalyzed)
}

func TestEngine_ChangedContentReextracted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.cpp", widgetSource)
	e := newTestEngine(t, dir)
	ctx := context.Background()

	_, err := e.AnalyzeFile(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "widget.cpp", `namespace lib {
class Gadget {
public:
    void spin() {}
};
}
`)
	_, err = e.AnalyzeFile(ctx, path)
	require.NoError(t, err)

	_, ok := e.Cache().Lookup("lib::Widget")
	assert.False(t, ok, "stale symbols are dropped on re-extraction")
	_, ok = e.Cache().Lookup("lib::Gadget")
	assert.True(t, ok)
}

func TestEngine_AnalyzeProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/widget.cpp", widgetSource)
	writeFile(t, dir, "src/helper.cpp", "void helper() {}\n")
	writeFile(t, dir, "node_modules/dep/skip.cpp", "void skipped() {}\n")
	writeFile(t, dir, "README.md", "# readme\n")
	e := newTestEngine(t, dir)

	out, err := e.AnalyzeProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Files)
	assert.Empty(t, out.Failures)
	assert.Greater(t, out.Symbols, 0)

	_, ok := e.Cache().Lookup("skipped")
	assert.False(t, ok, "excluded directories are not extracted")
	_, ok = e.Cache().Lookup("helper")
	assert.True(t, ok)
}

func TestEngine_GitignoreRespected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n")
	writeFile(t, dir, "kept.cpp", "void kept() {}\n")
	writeFile(t, dir, "generated/gen.cpp", "void generated_fn() {}\n")
	e := newTestEngine(t, dir)

	out, err := e.AnalyzeProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Files)

	_, ok := e.Cache().Lookup("generated_fn")
	assert.False(t, ok)
}

func TestEngine_MaxFileSize(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.cpp", widgetSource)
	cfg := testConfig(dir)
	cfg.Extraction.MaxFileSize = 8
	e, err := New(cfg)
	require.NoError(t, err)

	_, err = e.AnalyzeFile(context.Background(), path)
	assert.Error(t, err)
}

func TestEngine_BinaryContentRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.cpp")
	content := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("payload")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	e := newTestEngine(t, dir)

	_, err := e.AnalyzeFile(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, security.ErrBinaryContent))
}

func TestEngine_ForgetDropsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.cpp", widgetSource)
	e := newTestEngine(t, dir)

	_, err := e.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	require.Greater(t, e.Cache().Len(), 0)

	e.Forget(path)
	assert.Equal(t, 0, e.Cache().Len())
	_, ok := e.Resolve("lib::Widget", path)
	assert.False(t, ok)
}

func TestEngine_Suggest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.cpp", widgetSource)
	e := newTestEngine(t, dir)

	_, err := e.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	suggestions := e.Suggest("Widgett", 3)
	assert.Contains(t, suggestions, "Widget")
}

func TestWatcher_ReextractsOnWrite(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)

	w, err := e.NewWatcher()
	require.NoError(t, err)

	flushed := make(chan []string, 4)
	w.SetOnFlush(func(changed []string) { flushed <- changed })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	writeFile(t, dir, "fresh.cpp", "void fresh() {}\n")

	select {
	case changed := <-flushed:
		require.NotEmpty(t, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no re-extraction within deadline")
	}

	_, ok := e.Cache().Lookup("fresh")
	assert.True(t, ok)

	cancel()
	require.NoError(t, w.Close())
	<-done
}
