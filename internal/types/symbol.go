package types

import (
	"encoding/json"
	"fmt"
)

// SymbolKind represents the kind of declared entity
type SymbolKind int

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindNamespace
	SymbolKindClass
	SymbolKindStruct
	SymbolKindFunction
	SymbolKindMethod
	SymbolKindConstructor
	SymbolKindDestructor
	SymbolKindField
	SymbolKindEnum
	SymbolKindTypedef
	SymbolKindConstant
)

// symbolKindStrings provides O(1) lookup for symbol kind names
var symbolKindStrings = map[SymbolKind]string{
	SymbolKindNamespace:   "namespace",
	SymbolKindClass:       "class",
	SymbolKindStruct:      "struct",
	SymbolKindFunction:    "function",
	SymbolKindMethod:      "method",
	SymbolKindConstructor: "constructor",
	SymbolKindDestructor:  "destructor",
	SymbolKindField:       "field",
	SymbolKindEnum:        "enum",
	SymbolKindTypedef:     "typedef",
	SymbolKindConstant:    "constant",
}

// symbolKindValues is the reverse map used when decoding stored results
var symbolKindValues = reverseKindMap(symbolKindStrings)

func reverseKindMap[K comparable](m map[K]string) map[string]K {
	r := make(map[string]K, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

// String returns a string representation of the symbol kind
func (sk SymbolKind) String() string {
	if name, ok := symbolKindStrings[sk]; ok {
		return name
	}
	return "unknown"
}

// IsCallable reports whether symbols of this kind own a function body
// and therefore participate in control-flow and call extraction.
func (sk SymbolKind) IsCallable() bool {
	switch sk {
	case SymbolKindFunction, SymbolKindMethod, SymbolKindConstructor, SymbolKindDestructor:
		return true
	}
	return false
}

// IsScopeOpening reports whether symbols of this kind push a scope frame
// that child declarations are qualified under.
func (sk SymbolKind) IsScopeOpening() bool {
	switch sk {
	case SymbolKindNamespace, SymbolKindClass, SymbolKindStruct, SymbolKindEnum:
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler so results serialize with stable
// string tags instead of integer ordinals
func (sk SymbolKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(sk.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (sk *SymbolKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, ok := symbolKindValues[s]
	if !ok {
		return fmt.Errorf("unknown symbol kind: %q", s)
	}
	*sk = kind
	return nil
}

// Symbol represents one declared entity extracted from a source file.
// Symbols are built once during a file's extraction pass and never mutated
// afterwards; a re-parse replaces the whole set for that file.
type Symbol struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	Kind          SymbolKind `json:"kind"`
	FilePath      string     `json:"file_path"`
	StartLine     int        `json:"start_line"`
	StartColumn   int        `json:"start_column"`
	EndLine       int        `json:"end_line"`
	EndColumn     int        `json:"end_column"`
	Namespace     string     `json:"namespace,omitempty"`

	// ParentScope is the owning symbol's qualified name. It is a lookup
	// key into the same file's symbol set, never an owning reference.
	ParentScope string `json:"parent_scope,omitempty"`

	Complexity   int     `json:"complexity"`
	Confidence   float64 `json:"confidence"`
	IsDefinition bool    `json:"is_definition"`
	IsExported   bool    `json:"is_exported"`
	IsAsync      bool    `json:"is_async"`

	// LanguageFeatures is an open bag for per-language extras: decorators,
	// base classes, modifiers, generic parameters.
	LanguageFeatures map[string]any `json:"language_features,omitempty"`

	Signature string `json:"signature,omitempty"`
}

// Feature returns a language feature value, or nil when absent.
func (s *Symbol) Feature(key string) any {
	if s.LanguageFeatures == nil {
		return nil
	}
	return s.LanguageFeatures[key]
}

// SetFeature records a language feature, allocating the bag lazily.
func (s *Symbol) SetFeature(key string, value any) {
	if s.LanguageFeatures == nil {
		s.LanguageFeatures = make(map[string]any, 4)
	}
	s.LanguageFeatures[key] = value
}
