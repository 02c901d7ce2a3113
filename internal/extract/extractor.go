// Package extract turns source files into symbols, relationships, and
// control-flow data. Two strategies implement the same interface: a
// tree-sitter path for parsable files and a pattern path for everything
// else. Their outputs share one schema, so consumers never branch on
// which path ran.
package extract

import (
	"context"
	"strings"

	"github.com/standardbeagle/sci/internal/types"
)

// Options tune both strategies. Zero values fall back to the config
// package defaults at the engine layer; the extractors trust them.
type Options struct {
	// MinComplexity is the estimator score a function needs before its
	// control flow is analyzed.
	MinComplexity int
	// MaxDeepFunctions caps flow-analyzed functions per file.
	MaxDeepFunctions int
	// BuildFlowPaths enables entry-to-exit path enumeration.
	BuildFlowPaths bool
}

// StructuralExtractor is one extraction strategy.
type StructuralExtractor interface {
	Strategy() types.Strategy
	Extract(ctx context.Context, filePath string, content []byte) (*types.ExtractionResult, error)
}

// kindForCapture maps a query capture base name to a symbol kind.
func kindForCapture(capture string) (types.SymbolKind, bool) {
	switch capture {
	case "function":
		return types.SymbolKindFunction, true
	case "method":
		return types.SymbolKindMethod, true
	case "constructor":
		return types.SymbolKindConstructor, true
	case "class":
		return types.SymbolKindClass, true
	case "struct":
		return types.SymbolKindStruct, true
	case "enum":
		return types.SymbolKindEnum, true
	case "namespace":
		return types.SymbolKindNamespace, true
	case "type":
		return types.SymbolKindTypedef, true
	case "field":
		return types.SymbolKindField, true
	case "constant":
		return types.SymbolKindConstant, true
	}
	return types.SymbolKindUnknown, false
}

const maxConditionLen = 120

// trimCondition normalizes a condition expression for block storage.
func trimCondition(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	text = strings.TrimSpace(text)
	if len(text) > maxConditionLen {
		text = text[:maxConditionLen]
	}
	return text
}

// firstLine returns the first line of a declaration's text, used for
// signatures and inheritance clause parsing.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}
