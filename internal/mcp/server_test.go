package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/engine"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Project.Root = dir
	cfg.Extraction.SizeThresholdBytes = 0 // pattern strategy only

	eng, err := engine.New(cfg)
	require.NoError(t, err)
	return NewServer(eng, cfg), dir
}

type toolHandler = func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

func callTool(t *testing.T, handler toolHandler, params any) string {
	t.Helper()
	args, err := json.Marshal(params)
	require.NoError(t, err)

	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: args},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "tool returned error: %v", result.Content)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const librarySource = `namespace store {
class Shelf {
public:
    void stock() {
        if (empty_) {
            refill();
        }
    }
};
}
`

func TestHandleAnalyzeFile(t *testing.T) {
	s, dir := newTestServer(t)
	path := writeSource(t, dir, "shelf.cpp", librarySource)

	raw := callTool(t, s.handleAnalyzeFile, analyzeFileParams{Path: path})

	var result struct {
		Language string `json:"language"`
		Symbols  []struct {
			QualifiedName string `json:"qualified_name"`
		} `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &result))
	assert.Equal(t, "cpp", result.Language)

	var names []string
	for _, s := range result.Symbols {
		names = append(names, s.QualifiedName)
	}
	assert.Contains(t, names, "store::Shelf")
	assert.Contains(t, names, "store::Shelf::stock")
}

func TestHandleAnalyzeFile_MissingPath(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleAnalyzeFile(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: []byte(`{}`)},
	})
	require.NoError(t, err, "tool errors are results, not RPC failures")
	assert.True(t, result.IsError)
}

func TestHandleResolveSymbol(t *testing.T) {
	s, dir := newTestServer(t)
	path := writeSource(t, dir, "shelf.cpp", librarySource)
	callTool(t, s.handleAnalyzeFile, analyzeFileParams{Path: path})

	raw := callTool(t, s.handleResolveSymbol, resolveSymbolParams{Name: "Shelf"})
	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.True(t, resp.Found)
	assert.Equal(t, "store::Shelf", resp.Entry.QualifiedName)
}

func TestHandleResolveSymbol_MissSuggests(t *testing.T) {
	s, dir := newTestServer(t)
	path := writeSource(t, dir, "shelf.cpp", librarySource)
	callTool(t, s.handleAnalyzeFile, analyzeFileParams{Path: path})

	raw := callTool(t, s.handleResolveSymbol, resolveSymbolParams{Name: "Shelff"})
	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.False(t, resp.Found)
	assert.Contains(t, resp.Suggestions, "Shelf")
}

func TestHandleFileOutline(t *testing.T) {
	s, dir := newTestServer(t)
	path := writeSource(t, dir, "shelf.cpp", librarySource)

	raw := callTool(t, s.handleFileOutline, analyzeFileParams{Path: path})
	var resp struct {
		Strategy string         `json:"strategy"`
		Symbols  []outlineEntry `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, "pattern", resp.Strategy)
	require.NotEmpty(t, resp.Symbols)
	assert.Equal(t, "store", resp.Symbols[0].QualifiedName)
}

func TestHandleCacheStats(t *testing.T) {
	s, dir := newTestServer(t)
	path := writeSource(t, dir, "shelf.cpp", librarySource)
	callTool(t, s.handleAnalyzeFile, analyzeFileParams{Path: path})
	callTool(t, s.handleResolveSymbol, resolveSymbolParams{Name: "store::Shelf"})

	raw := callTool(t, s.handleCacheStats, struct{}{})
	var resp cacheStatsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Greater(t, resp.Cache.Entries, 0)
	assert.Equal(t, 1, resp.Engine.FilesAnalyzed)
}

func TestHandleAnalyzeProject(t *testing.T) {
	s, dir := newTestServer(t)
	writeSource(t, dir, "a.cpp", librarySource)
	writeSource(t, dir, "b.cpp", "void standalone() {\n    helper();\n    helper();\n}\n")

	raw := callTool(t, s.handleAnalyzeProject, struct{}{})
	var resp engine.ProjectResult
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, 2, resp.Files)
	assert.Empty(t, resp.Failures)
}

func TestResultSchema_Marshals(t *testing.T) {
	out, err := json.Marshal(ResultSchema())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"file_path", "language", "symbols", "relationships", "control_flow_data", "stats"} {
		assert.Contains(t, props, key)
	}
}
