// Package resolve maintains the cross-file symbol cache. Entries are
// keyed by qualified name, sharded by the name's base segment, and
// evicted under a recency-weighted least-frequently-used policy when
// the cache exceeds its capacity.
package resolve

import (
	"strings"

	"github.com/standardbeagle/sci/internal/types"
)

// Entry is one cached symbol with its cross-reference edges. The edge
// slices hold qualified names of related symbols.
type Entry struct {
	QualifiedName string           `json:"qualified_name"`
	Kind          types.SymbolKind `json:"kind"`
	FilePath      string           `json:"file_path"`
	StartLine     int              `json:"start_line"`
	EndLine       int              `json:"end_line"`
	ChildIDs      []string         `json:"child_ids,omitempty"`
	Callers       []string         `json:"callers,omitempty"`
	Callees       []string         `json:"callees,omitempty"`
	InheritsFrom  []string         `json:"inherits_from,omitempty"`
	UsedBy        []string         `json:"used_by,omitempty"`

	lastAccessed uint64
	accessCount  uint64
}

// baseName returns the last segment of a qualified name. Nested class
// segments joined with "." collapse to the member's own name too.
func baseName(qualified string) string {
	if i := strings.LastIndex(qualified, "::"); i >= 0 {
		qualified = qualified[i+2:]
	}
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		qualified = qualified[i+1:]
	}
	return qualified
}
