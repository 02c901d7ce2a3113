// Package mcp exposes the extraction engine over the Model Context
// Protocol so coding agents can query structure, flow, and symbol
// resolution directly.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/engine"
)

// Server wires the engine's operations into MCP tools over stdio.
type Server struct {
	cfg    *config.Config
	engine *engine.Engine
	server *mcp.Server
}

// NewServer builds the MCP server around a shared engine.
func NewServer(eng *engine.Engine, cfg *config.Config) *Server {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "sci-mcp-server",
			Version: "0.1.0",
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the context ends. Nothing else may
// write to stdout while it runs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_file",
		Description: "Extract symbols, relationships, and control flow from one source file. Returns the full structural result as JSON.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path to the source file",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleAnalyzeFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_project",
		Description: "Walk the project root and extract every matching source file, populating the symbol cache. Returns aggregate counts and per-file failures.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleAnalyzeProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "resolve_symbol",
		Description: "Resolve a symbol name to its definition using the shared cache. Qualified and bare names both work; 'from_file' supplies the lookup context (namespace, imports, aliases). Misses include near-match suggestions.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {
					Type:        "string",
					Description: "Symbol name, qualified (a::b::c) or bare",
				},
				"from_file": {
					Type:        "string",
					Description: "File whose imports and namespace scope the lookup",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleResolveSymbol)

	s.server.AddTool(&mcp.Tool{
		Name:        "file_outline",
		Description: "List the symbols of one file in source order with kind, lines, and complexity. Lighter than analyze_file when only structure is needed.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path to the source file",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleFileOutline)

	s.server.AddTool(&mcp.Tool{
		Name:        "cache_stats",
		Description: "Report resolution cache statistics (entries, hit rate, evictions) and engine extraction counters.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleCacheStats)
}
