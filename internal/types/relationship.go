package types

import (
	"encoding/json"
	"fmt"
)

// RelationshipType represents the kind of directed edge between two symbols
type RelationshipType int

const (
	RelationshipUnknown RelationshipType = iota
	RelationshipCalls
	RelationshipInherits
	RelationshipImplements
	RelationshipImports
	RelationshipReadsField
	RelationshipWritesField
	RelationshipUses
)

var relationshipTypeStrings = map[RelationshipType]string{
	RelationshipCalls:       "calls",
	RelationshipInherits:    "inherits",
	RelationshipImplements:  "implements",
	RelationshipImports:     "imports",
	RelationshipReadsField:  "reads_field",
	RelationshipWritesField: "writes_field",
	RelationshipUses:        "uses",
}

var relationshipTypeValues = reverseKindMap(relationshipTypeStrings)

// String returns a string representation of the relationship type
func (rt RelationshipType) String() string {
	if name, ok := relationshipTypeStrings[rt]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler
func (rt RelationshipType) MarshalJSON() ([]byte, error) {
	return json.Marshal(rt.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (rt *RelationshipType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, ok := relationshipTypeValues[s]
	if !ok {
		return fmt.Errorf("unknown relationship type: %q", s)
	}
	*rt = t
	return nil
}

// AccessLevel is the inheritance access level for inherits edges
type AccessLevel int

const (
	AccessUnspecified AccessLevel = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

var accessLevelStrings = map[AccessLevel]string{
	AccessPublic:    "public",
	AccessProtected: "protected",
	AccessPrivate:   "private",
}

var accessLevelValues = reverseKindMap(accessLevelStrings)

// String returns a string representation of the access level
func (al AccessLevel) String() string {
	if name, ok := accessLevelStrings[al]; ok {
		return name
	}
	return ""
}

// MarshalJSON implements json.Marshaler
func (al AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(al.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (al *AccessLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*al = AccessUnspecified
		return nil
	}
	level, ok := accessLevelValues[s]
	if !ok {
		return fmt.Errorf("unknown access level: %q", s)
	}
	*al = level
	return nil
}

// Relationship is a directed, typed edge between two symbol names.
// Targets are names, not ids: resolution to concrete symbols happens later
// against the resolution cache, and a miss there is expected, not an error.
type Relationship struct {
	FromName         string           `json:"from_name"`
	ToName           string           `json:"to_name"`
	RelationshipType RelationshipType `json:"relationship_type"`

	// Confidence reflects inference strength. Syntax-tree edges carry
	// >=0.9; pattern edges range 0.3-0.9 depending on ambiguity.
	Confidence float64 `json:"confidence"`

	LineNumber    int    `json:"line_number"`
	ColumnNumber  int    `json:"column_number"`
	SourceContext string `json:"source_context,omitempty"`
	UsagePattern  string `json:"usage_pattern,omitempty"`
	CrossLanguage bool   `json:"cross_language,omitempty"`

	// Inheritance-only attributes
	AccessLevel AccessLevel `json:"access_level,omitempty"`
	IsVirtual   bool        `json:"is_virtual,omitempty"`

	// Position flags derived from the enclosing control-flow blocks
	IsConditional bool `json:"is_conditional,omitempty"`
	IsInLoop      bool `json:"is_in_loop,omitempty"`
	IsInTryCatch  bool `json:"is_in_try_catch,omitempty"`
}
