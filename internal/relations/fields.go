package relations

import (
	"regexp"

	"github.com/standardbeagle/sci/internal/types"
)

// FieldAccess is one detected member read or write on a line.
type FieldAccess struct {
	Object   string
	Field    string
	Line     int
	Column   int
	Kind     types.RelationshipType
	SelfRef  bool
	Compound bool
}

var memberAccessRe = regexp.MustCompile(`([A-Za-z_]\w*)\s*(?:\.|->)\s*([A-Za-z_]\w*)`)

// assignTailRe matches an assignment operator directly after the member
// expression. A lone "=" is a write; "==" is a comparison and stays a
// read. Compound operators like "+=" both read and write but are
// classified as writes.
var assignTailRe = regexp.MustCompile(`^\s*(?:[+\-*/%&|^]|<<|>>)?=(?:[^=]|$)`)

// FindFieldAccesses scans a stripped line for member accesses and
// classifies each as a read or write. Member calls are skipped; the
// call matchers own those.
func FindFieldAccesses(line string, lineNumber int) []FieldAccess {
	matches := memberAccessRe.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}

	accesses := make([]FieldAccess, 0, len(matches))
	for _, m := range matches {
		object := line[m[2]:m[3]]
		field := line[m[4]:m[5]]
		rest := line[m[1]:]

		// A '(' after the member means a method call, not a field.
		if trimmed := trimLeftSpace(rest); len(trimmed) > 0 && trimmed[0] == '(' {
			continue
		}

		kind := types.RelationshipReadsField
		compound := false
		if op := assignTailRe.FindString(rest); op != "" {
			kind = types.RelationshipWritesField
			op = trimLeftSpace(op)
			compound = len(op) > 0 && op[0] != '='
		}

		_, selfRef := selfReceivers[object]
		accesses = append(accesses, FieldAccess{
			Object:   object,
			Field:    field,
			Line:     lineNumber,
			Column:   m[4] + 1,
			Kind:     kind,
			SelfRef:  selfRef,
			Compound: compound,
		})
	}
	return accesses
}

func trimLeftSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}
