package extract

import (
	"regexp"

	"github.com/standardbeagle/sci/internal/types"
)

// patternSet holds the compiled declaration patterns for one language
// family. Sets are compiled once at package init; the pattern extractor
// picks a set per file by language name.
type patternSet struct {
	// braceScoped is false for indentation languages; only symbols are
	// extracted there, never scopes or control flow.
	braceScoped bool

	namespaceRe *regexp.Regexp
	classRe     *regexp.Regexp
	enumRe      *regexp.Regexp
	functionRe  *regexp.Regexp
	typedefRe   *regexp.Regexp
	importRe    *regexp.Regexp
	aliasRe     *regexp.Regexp
}

// Control-flow keyword patterns shared by every brace-scoped set.
var (
	ifKeywordRe      = regexp.MustCompile(`(?:^|\W)(?:else\s+)?if\s*\(`)
	bareElseRe       = regexp.MustCompile(`(?:^|\W)else\s*\{`)
	forKeywordRe     = regexp.MustCompile(`(?:^|\W)for(?:each)?\s*\(`)
	whileKeywordRe   = regexp.MustCompile(`(?:^|\W)while\s*\(`)
	doKeywordRe      = regexp.MustCompile(`(?:^|\W)do\s*\{`)
	switchKeywordRe  = regexp.MustCompile(`(?:^|\W)(?:switch|match)\s*[\({]`)
	tryKeywordRe     = regexp.MustCompile(`(?:^|\W)try\s*\{`)
	catchKeywordRe   = regexp.MustCompile(`(?:^|\W)catch\s*[\({]`)
	finallyKeywordRe = regexp.MustCompile(`(?:^|\W)finally\s*\{`)
	rangeForHintRe   = regexp.MustCompile(`for\s*\([^;)]*(?::|\bin\b)[^;)]*\)`)
	conditionRe      = regexp.MustCompile(`\(([^{]*)\)`)
	catchParamRe     = regexp.MustCompile(`catch\s*\(([^)]*)\)`)
)

var cppPatterns = &patternSet{
	braceScoped: true,
	namespaceRe: regexp.MustCompile(`^\s*(?:inline\s+)?namespace\s+([\w:]+)\s*\{`),
	classRe:     regexp.MustCompile(`^\s*(?:template\s*<[^;]*>\s*)?(class|struct|union)\s+(?:\w+\s+)*?([A-Za-z_]\w*)\s*(?:final\s*)?(?:(?::[^;{]*)?\{|;)`),
	enumRe:      regexp.MustCompile(`^\s*enum(?:\s+(?:class|struct))?\s+([A-Za-z_]\w*)`),
	functionRe:  regexp.MustCompile(`^\s*(?:[\w:<>,&*~\[\]]+\s+)*[&*]*(~?[A-Za-z_]\w*(?:::~?[A-Za-z_]\w*)*)\s*\([^;{}]*\)\s*(?:const|noexcept|override|final|mutable|->\s*[\w:<>&*, ]+|\s)*\{`),
	typedefRe:   regexp.MustCompile(`^\s*(?:typedef\s+.*\s+([A-Za-z_]\w*)\s*;|using\s+([A-Za-z_]\w*)\s*=)`),
	importRe:    regexp.MustCompile(`^\s*(?:#\s*include\s*[<"]([^>"]+)[>"]|using\s+namespace\s+([\w:]+)\s*;|import\s+([\w.:]+)\s*;)`),
	aliasRe:     regexp.MustCompile(`^\s*namespace\s+([A-Za-z_]\w*)\s*=\s*([\w:]+)\s*;`),
}

var cFamilyPatterns = &patternSet{
	braceScoped: true,
	namespaceRe: regexp.MustCompile(`^\s*namespace\s+([\w.:]+)\s*[;{]`),
	classRe:     regexp.MustCompile(`^\s*(?:[\w@\[\]]+\s+)*(class|struct|interface|trait|record|object)\s+([A-Za-z_]\w*)`),
	enumRe:      regexp.MustCompile(`^\s*(?:\w+\s+)*enum\s+(?:class\s+)?([A-Za-z_]\w*)`),
	functionRe:  regexp.MustCompile(`^\s*(?:[\w@<>,&*\[\]]+\s+)*(?:function\s+|fn\s+|fun\s+|func\s+)?([A-Za-z_]\w*)\s*(?:<[^>]*>)?\s*\([^;{}]*\)\s*(?:[\w\s,<>\[\]:]*)?\{`),
	typedefRe:   regexp.MustCompile(`^\s*type\s+([A-Za-z_]\w*)\s*=`),
	importRe:    regexp.MustCompile(`^\s*(?:import\s+(?:[\w.]+\s+from\s+)?["']?([\w./@-]+)["']?|using\s+([\w.]+)\s*;|use\s+([\w:]+))`),
	aliasRe:     regexp.MustCompile(`^\s*import\s+([\w.]+)\s+as\s+([A-Za-z_]\w*)`),
}

var pythonPatterns = &patternSet{
	braceScoped: false,
	classRe:     regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)`),
	functionRe:  regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`),
	importRe:    regexp.MustCompile(`^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`),
	aliasRe:     regexp.MustCompile(`^\s*import\s+([\w.]+)\s+as\s+([A-Za-z_]\w*)`),
}

// patternSetFor picks a pattern set by language name. Unknown
// languages fall back to the generic brace-family set.
func patternSetFor(language string) *patternSet {
	switch language {
	case "cpp", "c":
		return cppPatterns
	case "python":
		return pythonPatterns
	default:
		return cFamilyPatterns
	}
}

// loopTypeOf classifies a loop line.
func loopTypeOf(stripped string) types.LoopType {
	switch {
	case doKeywordRe.MatchString(stripped):
		return types.LoopDoWhile
	case whileKeywordRe.MatchString(stripped):
		return types.LoopWhile
	case rangeForHintRe.MatchString(stripped):
		return types.LoopRangeFor
	case forKeywordRe.MatchString(stripped):
		return types.LoopFor
	}
	return types.LoopNone
}

// lineCondition pulls the first parenthesized expression off a control
// line.
func lineCondition(stripped string) string {
	if m := conditionRe.FindStringSubmatch(stripped); m != nil {
		return trimCondition(m[1])
	}
	return ""
}
