package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/sci/internal/engine"
	"github.com/standardbeagle/sci/internal/resolve"
)

type analyzeFileParams struct {
	Path string `json:"path"`
}

type resolveSymbolParams struct {
	Name     string `json:"name"`
	FromFile string `json:"from_file"`
}

// outlineEntry is one row of a file_outline response.
type outlineEntry struct {
	QualifiedName string `json:"qualified_name"`
	Kind          string `json:"kind"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	Complexity    int    `json:"complexity,omitempty"`
	Signature     string `json:"signature,omitempty"`
}

type resolveResponse struct {
	Found       bool           `json:"found"`
	Entry       *resolve.Entry `json:"entry,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

type cacheStatsResponse struct {
	Cache  resolve.Stats       `json:"cache"`
	Engine engine.ProjectStats `json:"engine"`
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeFileParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid parameters: %v", err), nil
	}
	if params.Path == "" {
		return errorResult("path is required"), nil
	}

	result, err := s.engine.AnalyzeFile(ctx, params.Path)
	if err != nil {
		return errorResult("extraction failed: %v", err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.engine.AnalyzeProject(ctx)
	if err != nil {
		return errorResult("project analysis failed: %v", err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleResolveSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params resolveSymbolParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid parameters: %v", err), nil
	}
	if params.Name == "" {
		return errorResult("name is required"), nil
	}

	entry, ok := s.engine.Resolve(params.Name, params.FromFile)
	if !ok {
		return jsonResult(resolveResponse{
			Found:       false,
			Suggestions: s.engine.Suggest(params.Name, 5),
		})
	}
	return jsonResult(resolveResponse{Found: true, Entry: &entry})
}

func (s *Server) handleFileOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeFileParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid parameters: %v", err), nil
	}
	if params.Path == "" {
		return errorResult("path is required"), nil
	}

	result, err := s.engine.AnalyzeFile(ctx, params.Path)
	if err != nil {
		return errorResult("extraction failed: %v", err), nil
	}

	outline := make([]outlineEntry, 0, len(result.Symbols))
	for _, sym := range result.Symbols {
		outline = append(outline, outlineEntry{
			QualifiedName: sym.QualifiedName,
			Kind:          sym.Kind.String(),
			StartLine:     sym.StartLine,
			EndLine:       sym.EndLine,
			Complexity:    sym.Complexity,
			Signature:     sym.Signature,
		})
	}
	return jsonResult(map[string]any{
		"file":     result.FilePath,
		"language": result.Language,
		"strategy": result.Strategy.String(),
		"symbols":  outline,
	})
}

func (s *Server) handleCacheStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(cacheStatsResponse{
		Cache:  s.engine.Cache().Stats(),
		Engine: s.engine.Stats(),
	})
}

// jsonResult marshals data into a single text content block.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// errorResult reports a tool-level failure without failing the RPC.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
