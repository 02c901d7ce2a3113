package relations

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/sci/internal/types"
)

// BaseSpec is one parsed base in an inheritance clause.
type BaseSpec struct {
	Name      string
	Access    types.AccessLevel
	IsVirtual bool
	// Interface distinguishes an "implements" base from an "extends"
	// base in languages that separate the two.
	Interface bool
}

var (
	cppBaseClauseRe  = regexp.MustCompile(`\b(?:class|struct)\s+[A-Za-z_]\w*(?:\s*<[^>]*>)?(?:\s+final)?\s*:\s*([^{;]+)`)
	extendsClauseRe  = regexp.MustCompile(`\bextends\s+([A-Za-z_][\w.:<>, ]*?)(?:\s+implements\b|\s*\{|\s*$)`)
	implementsClause = regexp.MustCompile(`\bimplements\s+([A-Za-z_][\w.:<>, ]*?)(?:\s*\{|\s*$)`)
)

// ParseInheritance parses the base clause of a type declaration line.
// C++ colon clauses honor per-base access and virtual keywords; bases
// without an explicit access default to public for structs and private
// for classes. extends/implements clauses always yield public bases.
func ParseInheritance(line string) []BaseSpec {
	if m := cppBaseClauseRe.FindStringSubmatch(line); m != nil {
		defaultAccess := types.AccessPrivate
		if strings.Contains(line[:strings.Index(line, ":")], "struct") {
			defaultAccess = types.AccessPublic
		}
		return parseCppBases(m[1], defaultAccess)
	}

	var bases []BaseSpec
	if m := extendsClauseRe.FindStringSubmatch(line); m != nil {
		for _, name := range splitBaseList(m[1]) {
			bases = append(bases, BaseSpec{Name: name, Access: types.AccessPublic})
		}
	}
	if m := implementsClause.FindStringSubmatch(line); m != nil {
		for _, name := range splitBaseList(m[1]) {
			bases = append(bases, BaseSpec{Name: name, Access: types.AccessPublic, Interface: true})
		}
	}
	return bases
}

func parseCppBases(clause string, defaultAccess types.AccessLevel) []BaseSpec {
	var bases []BaseSpec
	for _, part := range splitTopLevel(clause) {
		spec := BaseSpec{Access: defaultAccess}
		words := strings.Fields(part)
		for len(words) > 0 {
			switch words[0] {
			case "public":
				spec.Access = types.AccessPublic
			case "protected":
				spec.Access = types.AccessProtected
			case "private":
				spec.Access = types.AccessPrivate
			case "virtual":
				spec.IsVirtual = true
			default:
				spec.Name = stripTemplateArgs(strings.Join(words, " "))
				words = nil
				continue
			}
			words = words[1:]
		}
		if spec.Name != "" {
			bases = append(bases, spec)
		}
	}
	return bases
}

// splitTopLevel splits a base list on commas outside template brackets.
func splitTopLevel(clause string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range clause {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(clause[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(clause[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

func splitBaseList(list string) []string {
	var names []string
	for _, part := range splitTopLevel(list) {
		if name := stripTemplateArgs(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func stripTemplateArgs(name string) string {
	if i := strings.IndexAny(name, "<"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
