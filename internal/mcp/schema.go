package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// ResultSchema describes the per-file extraction result document. Both
// extraction strategies emit this shape; consumers can rely on it
// without knowing which strategy ran.
func ResultSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Structural extraction result for one source file",
		Properties: map[string]*jsonschema.Schema{
			"file_path": {Type: "string"},
			"language":  {Type: "string"},
			"symbols": {
				Type:  "array",
				Items: symbolSchema(),
			},
			"relationships": {
				Type:  "array",
				Items: relationshipSchema(),
			},
			"control_flow_data": controlFlowSchema(),
			"patterns": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"pattern_type": {Type: "string"},
						"name":         {Type: "string"},
						"line_number":  {Type: "integer"},
						"confidence":   {Type: "number"},
					},
				},
			},
			"stats": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"lines_processed":       {Type: "integer"},
					"symbols_extracted":     {Type: "integer"},
					"relationships_found":   {Type: "integer"},
					"control_flow_analyzed": {Type: "integer"},
				},
			},
		},
		Required: []string{"file_path", "language", "symbols", "relationships"},
	}
}

func symbolSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":           {Type: "string"},
			"qualified_name": {Type: "string"},
			"kind": {
				Type: "string",
				Enum: []any{
					"namespace", "class", "struct", "function", "method",
					"constructor", "destructor", "field", "enum", "typedef",
					"constant",
				},
			},
			"file_path":    {Type: "string"},
			"start_line":   {Type: "integer"},
			"start_column": {Type: "integer"},
			"end_line":     {Type: "integer"},
			"end_column":   {Type: "integer"},
			"namespace":    {Type: "string"},
			"parent_scope": {
				Type:        "string",
				Description: "Qualified name of the owning symbol; a lookup key, not a reference",
			},
			"complexity":    {Type: "integer"},
			"confidence":    {Type: "number"},
			"is_definition": {Type: "boolean"},
			"is_exported":   {Type: "boolean"},
			"is_async":      {Type: "boolean"},
			"language_features": {
				Type:        "object",
				Description: "Per-language extras: decorators, base classes, modifiers",
			},
			"signature": {Type: "string"},
		},
		Required: []string{"name", "qualified_name", "kind", "start_line", "end_line"},
	}
}

func relationshipSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"from_name":         {Type: "string"},
			"to_name":           {Type: "string"},
			"relationship_type": {Type: "string"},
			"confidence":        {Type: "number"},
			"line_number":       {Type: "integer"},
			"column_number":     {Type: "integer"},
			"source_context":    {Type: "string"},
			"usage_pattern":     {Type: "string"},
			"cross_language":    {Type: "boolean"},
			"access_level":      {Type: "string"},
			"is_virtual":        {Type: "boolean"},
			"is_conditional":    {Type: "boolean"},
			"is_in_loop":        {Type: "boolean"},
			"is_in_try_catch":   {Type: "boolean"},
		},
		Required: []string{"from_name", "to_name", "relationship_type"},
	}
}

func controlFlowSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"blocks": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"id":          {Type: "string"},
						"symbol_name": {Type: "string"},
						"block_type":  {Type: "string"},
						"start_line":  {Type: "integer"},
						"end_line":    {Type: "integer"},
						"parent_block_id": {
							Type:        "string",
							Description: "ID of the enclosing block; empty for the entry block",
						},
						"condition":       {Type: "string"},
						"loop_type":       {Type: "string"},
						"complexity":      {Type: "integer"},
						"exception_types": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					},
					Required: []string{"id", "symbol_name", "block_type"},
				},
			},
			"calls": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"caller_name":     {Type: "string"},
						"target_function": {Type: "string"},
						"line_number":     {Type: "integer"},
						"column_number":   {Type: "integer"},
						"call_type":       {Type: "string"},
						"is_conditional":  {Type: "boolean"},
						"is_in_loop":      {Type: "boolean"},
						"is_in_try_catch": {Type: "boolean"},
					},
					Required: []string{"caller_name", "target_function"},
				},
			},
			"paths": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"symbol_name": {Type: "string"},
						"block_ids":   {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						"complexity":  {Type: "integer"},
						"is_complete": {Type: "boolean"},
						"is_cyclic":   {Type: "boolean"},
					},
				},
			},
		},
	}
}
