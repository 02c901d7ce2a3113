// Package relations detects calls, field accesses, and inheritance
// clauses on comment-stripped source lines. The pattern extraction path
// runs these matchers per logical line; the syntax-tree path reuses the
// confidence constants so both strategies score alike.
package relations

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/sci/internal/types"
)

// Confidence levels per detection route. Syntax-tree results outrank
// qualified pattern matches, which outrank bare-identifier matches.
// Forward declarations rank below all of them; the definition may live
// in another file.
const (
	ConfidenceSyntaxTree  = 0.95
	ConfidenceQualified   = 0.8
	ConfidenceUnqualified = 0.7
	ConfidenceForward     = 0.5
)

// CallSite is one detected call on a line.
type CallSite struct {
	Target     string
	Receiver   string
	Line       int
	Column     int
	CallType   types.CallType
	Confidence float64
}

var (
	qualifiedCallRe = regexp.MustCompile(`([A-Za-z_]\w*(?:::[A-Za-z_]\w*)+)\s*\(`)
	methodCallRe    = regexp.MustCompile(`([A-Za-z_]\w*)\s*(?:\.|->)\s*([A-Za-z_]\w*)\s*\(`)
	simpleCallRe    = regexp.MustCompile(`(?:^|[^\w.>:])([A-Za-z_]\w*)\s*\(`)
)

// callKeywords are identifiers that look like calls but are control
// flow, operators, or declarations.
var callKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "catch": {}, "return": {}, "sizeof": {}, "alignof": {},
	"typeof": {}, "decltype": {}, "new": {}, "delete": {}, "throw": {},
	"assert": {}, "static_assert": {}, "defined": {}, "match": {},
	"select": {}, "foreach": {}, "until": {}, "unless": {}, "elif": {},
	"except": {}, "with": {}, "lock": {}, "using": {}, "synchronized": {},
}

// selfReceivers name the current object in the supported languages.
var selfReceivers = map[string]struct{}{
	"this": {}, "self": {}, "Self": {},
}

// FindCalls scans a stripped line for call sites. Qualified and method
// calls are matched first; the bare-identifier pass then skips spans
// already claimed so one call is never reported twice. Columns are
// 1-based.
func FindCalls(line string, lineNumber int) []CallSite {
	if !strings.Contains(line, "(") {
		return nil
	}

	var sites []CallSite
	claimed := make([][2]int, 0, 4)
	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c[1] && end > c[0] {
				return true
			}
		}
		return false
	}

	for _, m := range qualifiedCallRe.FindAllStringSubmatchIndex(line, -1) {
		target := line[m[2]:m[3]]
		if isKeywordCall(lastSegment(target)) {
			continue
		}
		sites = append(sites, CallSite{
			Target:     target,
			Line:       lineNumber,
			Column:     m[2] + 1,
			CallType:   types.CallDirect,
			Confidence: ConfidenceQualified,
		})
		claimed = append(claimed, [2]int{m[0], m[1]})
	}

	for _, m := range methodCallRe.FindAllStringSubmatchIndex(line, -1) {
		if overlaps(m[0], m[1]) {
			continue
		}
		receiver := line[m[2]:m[3]]
		method := line[m[4]:m[5]]
		if isKeywordCall(method) {
			continue
		}
		callType := types.CallMethod
		if _, ok := selfReceivers[receiver]; ok {
			callType = types.CallSelfMethod
		}
		sites = append(sites, CallSite{
			Target:     method,
			Receiver:   receiver,
			Line:       lineNumber,
			Column:     m[4] + 1,
			CallType:   callType,
			Confidence: ConfidenceUnqualified,
		})
		claimed = append(claimed, [2]int{m[0], m[1]})
	}

	for _, m := range simpleCallRe.FindAllStringSubmatchIndex(line, -1) {
		if overlaps(m[2], m[1]) {
			continue
		}
		name := line[m[2]:m[3]]
		if isKeywordCall(name) {
			continue
		}
		sites = append(sites, CallSite{
			Target:     name,
			Line:       lineNumber,
			Column:     m[2] + 1,
			CallType:   types.CallDirect,
			Confidence: ConfidenceUnqualified,
		})
		claimed = append(claimed, [2]int{m[2], m[1]})
	}

	return sites
}

func isKeywordCall(name string) bool {
	_, ok := callKeywords[name]
	return ok
}

func lastSegment(qualified string) string {
	if i := strings.LastIndex(qualified, "::"); i >= 0 {
		return qualified[i+2:]
	}
	return qualified
}
