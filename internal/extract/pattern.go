package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/standardbeagle/sci/internal/cflow"
	"github.com/standardbeagle/sci/internal/complexity"
	"github.com/standardbeagle/sci/internal/relations"
	"github.com/standardbeagle/sci/internal/scope"
	"github.com/standardbeagle/sci/internal/types"
)

// PatternExtractor is the grammarless strategy: a single pass over
// logical lines driving a brace tracker, a scope stack, and per-line
// declaration patterns. It handles files no grammar claims and very
// large files where parsing is not worth the cost.
type PatternExtractor struct {
	registry *Registry
	opts     Options
}

// NewPatternExtractor builds the pattern strategy. The registry is only
// consulted for language naming, never for grammars.
func NewPatternExtractor(registry *Registry, opts Options) *PatternExtractor {
	return &PatternExtractor{registry: registry, opts: opts}
}

// Strategy identifies the pattern path.
func (e *PatternExtractor) Strategy() types.Strategy {
	return types.StrategyPattern
}

// Extract scans the file line by line. It never fails on malformed
// source; unbalanced input degrades to fewer symbols, not errors.
func (e *PatternExtractor) Extract(ctx context.Context, filePath string, content []byte) (*types.ExtractionResult, error) {
	ext := filepath.Ext(filePath)
	language, ok := e.registry.LanguageForExt(ext)
	if !ok {
		language = strings.TrimPrefix(strings.ToLower(ext), ".")
	}

	result := types.NewExtractionResult(filePath, language)
	result.Strategy = types.StrategyPattern
	rawLines := strings.Split(string(content), "\n")
	result.Stats.LinesProcessed = len(rawLines)

	set := patternSetFor(language)
	if !set.braceScoped {
		e.extractFlat(ctx, set, rawLines, filePath, result)
	} else if err := e.scanBraced(ctx, set, rawLines, filePath, result); err != nil {
		return nil, err
	}

	result.Stats.SymbolsExtracted = len(result.Symbols)
	result.Stats.RelationshipsFound = len(result.Relationships)
	return result, nil
}

// activeFunction is the function currently being scanned. The pattern
// path never nests functions; an inner function-like line is treated as
// a statement of the outer one.
type activeFunction struct {
	symbolIdx   int
	builder     *cflow.Builder
	calls       []types.ControlFlowCall
	sigStartIdx int
}

type patternScan struct {
	e        *PatternExtractor
	set      *patternSet
	result   *types.ExtractionResult
	filePath string
	rawLines []string

	tracker  *scope.BraceTracker
	stack    *scope.Stack
	openSyms []int
	fn       *activeFunction
	gate     *complexity.Gate
}

func (e *PatternExtractor) scanBraced(ctx context.Context, set *patternSet, rawLines []string, filePath string, result *types.ExtractionResult) error {
	s := &patternScan{
		e:        e,
		set:      set,
		result:   result,
		filePath: filePath,
		rawLines: rawLines,
		tracker:  scope.NewBraceTracker(),
		stack:    scope.NewStack(),
		gate:     complexity.NewGate(e.opts.MinComplexity, e.opts.MaxDeepFunctions),
	}

	logical := scope.JoinLogicalLines(rawLines)
	for i, ll := range logical {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s.line(ll)
	}

	// Unbalanced input: force-close whatever is still open at EOF.
	lastLine := len(rawLines)
	for lastLine > 1 && strings.TrimSpace(rawLines[lastLine-1]) == "" {
		lastLine--
	}
	if s.fn != nil {
		s.finishFunction(lastLine)
	}
	for range s.stack.PopBelow(-1) {
		s.popSymbol(lastLine)
	}
	return nil
}

func (s *patternScan) line(ll scope.LogicalLine) {
	stripped := s.tracker.Strip(ll.Text)
	depthBefore := s.tracker.Depth()
	opens, closes := s.tracker.ApplyStripped(stripped)
	depthAfter := s.tracker.Depth()

	// Closers run against the line's low-water depth so a close-reopen
	// line like "} else if (x) {" ends the old block before the new one
	// opens.
	depthMid := depthBefore - closes
	if depthMid < 0 {
		depthMid = 0
	}

	if s.fn != nil {
		s.fn.builder.CloseBelow(depthMid, ll.EndLine)
	}
	for range s.stack.PopBelow(depthMid) {
		s.popSymbol(ll.EndLine)
	}

	if strings.TrimSpace(stripped) == "" {
		return
	}

	if s.fn != nil {
		s.statementLine(stripped, ll, depthAfter, opens)
		return
	}

	s.declarationLine(stripped, ll, depthAfter, opens, closes)
}

// closedSameLine reports whether a brace block opened on this line also
// closed on it, so no scope frame may remain open for it.
func closedSameLine(stripped string, opens, closes int) bool {
	if opens == 0 || closes < opens {
		return false
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(stripped), ";")
	return strings.HasSuffix(trimmed, "}")
}

// popSymbol closes the innermost tracked scope symbol. Popping the
// function frame finalizes its flow.
func (s *patternScan) popSymbol(endLine int) {
	if len(s.openSyms) == 0 {
		return
	}
	idx := s.openSyms[len(s.openSyms)-1]
	s.openSyms = s.openSyms[:len(s.openSyms)-1]

	if s.fn != nil && idx == s.fn.symbolIdx {
		s.finishFunction(endLine)
		return
	}
	if idx >= 0 {
		s.result.Symbols[idx].EndLine = endLine
	}
}

func (s *patternScan) declarationLine(stripped string, ll scope.LogicalLine, depthAfter, opens, closes int) {
	if s.tryImport(stripped, ll) {
		return
	}
	if s.tryAlias(stripped, ll) {
		return
	}
	if s.tryNamespace(stripped, ll, depthAfter, opens, closes) {
		return
	}
	if s.tryClass(stripped, ll, depthAfter, opens, closes) {
		return
	}
	if s.tryEnum(stripped, ll, depthAfter, opens, closes) {
		return
	}
	if s.tryTypedef(stripped, ll) {
		return
	}
	if s.tryFunction(stripped, ll, depthAfter, opens, closes) {
		return
	}
	s.tryField(stripped, ll)
}

func (s *patternScan) addSymbol(sym types.Symbol) int {
	s.result.Symbols = append(s.result.Symbols, sym)
	return len(s.result.Symbols) - 1
}

func (s *patternScan) addPattern(patternType, name string, line int, confidence float64) {
	s.result.Patterns = append(s.result.Patterns, types.PatternInfo{
		PatternType: patternType,
		Name:        name,
		LineNumber:  line,
		Confidence:  confidence,
	})
}

func (s *patternScan) tryImport(stripped string, ll scope.LogicalLine) bool {
	if s.set.importRe == nil {
		return false
	}
	m := s.set.importRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	target := ""
	for _, g := range m[1:] {
		if g != "" {
			target = g
			break
		}
	}
	if target == "" {
		return false
	}
	s.result.Relationships = append(s.result.Relationships, types.Relationship{
		FromName:         s.filePath,
		ToName:           target,
		RelationshipType: types.RelationshipImports,
		Confidence:       relations.ConfidenceQualified,
		LineNumber:       ll.StartLine,
	})
	s.addPattern("import", target, ll.StartLine, relations.ConfidenceQualified)
	return true
}

func (s *patternScan) tryAlias(stripped string, ll scope.LogicalLine) bool {
	if s.set.aliasRe == nil {
		return false
	}
	m := s.set.aliasRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	s.addPattern("namespace_alias", m[1]+"="+m[2], ll.StartLine, relations.ConfidenceQualified)
	return true
}

func (s *patternScan) tryNamespace(stripped string, ll scope.LogicalLine, depthAfter, opens, closes int) bool {
	if s.set.namespaceRe == nil {
		return false
	}
	m := s.set.namespaceRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	name := m[1]
	qualified := s.stack.Qualify(name)

	idx := s.addSymbol(types.Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.SymbolKindNamespace,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   s.stack.ParentScope(),
		Confidence:    relations.ConfidenceQualified,
		IsDefinition:  true,
		IsExported:    true,
		Signature:     firstLine(stripped),
	})
	if strings.Contains(stripped, "{") && !closedSameLine(stripped, opens, closes) {
		s.stack.Push(scope.Frame{Name: name, Kind: scope.KindNamespace, OpenDepth: depthAfter, StartLine: ll.StartLine})
		s.openSyms = append(s.openSyms, idx)
	}
	s.addPattern("namespace", qualified, ll.StartLine, relations.ConfidenceQualified)
	return true
}

func (s *patternScan) tryClass(stripped string, ll scope.LogicalLine, depthAfter, opens, closes int) bool {
	if s.set.classRe == nil {
		return false
	}
	m := s.set.classRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	keyword, name := m[1], m[2]
	kind := types.SymbolKindClass
	frameKind := scope.KindClass
	if keyword == "struct" || keyword == "union" {
		kind = types.SymbolKindStruct
		frameKind = scope.KindStruct
	}

	forward := scope.IsForwardDeclaration(stripped)
	confidence := relations.ConfidenceQualified
	if forward {
		confidence = relations.ConfidenceForward
	}
	qualified := s.stack.Qualify(name)
	idx := s.addSymbol(types.Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   s.stack.ParentScope(),
		Confidence:    confidence,
		IsDefinition:  !forward,
		IsExported:    isExportedName(name, stripped),
		Signature:     firstLine(stripped),
	})

	for _, base := range relations.ParseInheritance(stripped) {
		relType := types.RelationshipInherits
		if base.Interface {
			relType = types.RelationshipImplements
		}
		s.result.Relationships = append(s.result.Relationships, types.Relationship{
			FromName:         qualified,
			ToName:           base.Name,
			RelationshipType: relType,
			Confidence:       relations.ConfidenceQualified,
			LineNumber:       ll.StartLine,
			SourceContext:    firstLine(stripped),
			AccessLevel:      base.Access,
			IsVirtual:        base.IsVirtual,
		})
	}

	if !forward && opens > 0 && !closedSameLine(stripped, opens, closes) {
		s.stack.Push(scope.Frame{Name: name, Kind: frameKind, OpenDepth: depthAfter, StartLine: ll.StartLine})
		s.openSyms = append(s.openSyms, idx)
	}
	s.addPattern("class_declaration", qualified, ll.StartLine, confidence)
	return true
}

func (s *patternScan) tryEnum(stripped string, ll scope.LogicalLine, depthAfter, opens, closes int) bool {
	if s.set.enumRe == nil {
		return false
	}
	m := s.set.enumRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	name := m[1]
	qualified := s.stack.Qualify(name)
	idx := s.addSymbol(types.Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.SymbolKindEnum,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   s.stack.ParentScope(),
		Confidence:    relations.ConfidenceQualified,
		IsDefinition:  opens > 0,
		IsExported:    isExportedName(name, stripped),
		Signature:     firstLine(stripped),
	})
	if opens > 0 && !closedSameLine(stripped, opens, closes) {
		s.stack.Push(scope.Frame{Name: name, Kind: scope.KindEnum, OpenDepth: depthAfter, StartLine: ll.StartLine})
		s.openSyms = append(s.openSyms, idx)
	}
	return true
}

func (s *patternScan) tryTypedef(stripped string, ll scope.LogicalLine) bool {
	if s.set.typedefRe == nil {
		return false
	}
	m := s.set.typedefRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	name := ""
	for _, g := range m[1:] {
		if g != "" {
			name = g
			break
		}
	}
	if name == "" {
		return false
	}
	s.addSymbol(types.Symbol{
		Name:          name,
		QualifiedName: s.stack.Qualify(name),
		Kind:          types.SymbolKindTypedef,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   s.stack.ParentScope(),
		Confidence:    relations.ConfidenceQualified,
		IsDefinition:  true,
		IsExported:    isExportedName(name, stripped),
		Signature:     firstLine(stripped),
	})
	return true
}

func (s *patternScan) tryFunction(stripped string, ll scope.LogicalLine, depthAfter, opens, closes int) bool {
	if s.set.functionRe == nil || !strings.Contains(stripped, "(") {
		return false
	}
	m := s.set.functionRe.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	name := m[1]
	if name == "" || isControlKeywordName(name) {
		return false
	}

	kind := types.SymbolKindFunction
	enclosing, inClass := s.stack.EnclosingClass()
	switch {
	case scope.IsDestructor(name) || strings.Contains(name, "::~"):
		kind = types.SymbolKindDestructor
	case inClass && scope.IsConstructor(name, enclosing.Name):
		kind = types.SymbolKindConstructor
	case inClass:
		kind = types.SymbolKindMethod
	}

	qualified := s.stack.Qualify(name)
	parent := s.stack.ParentScope()
	if prefix, _ := scope.SplitQualified(qualified); prefix != "" {
		parent = prefix
	}

	idx := s.addSymbol(types.Symbol{
		Name:          lastNameSegment(name),
		QualifiedName: qualified,
		Kind:          kind,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   parent,
		Confidence:    relations.ConfidenceQualified,
		IsDefinition:  true,
		IsExported:    isExportedName(name, stripped),
		IsAsync:       strings.Contains(stripped, "async ") || strings.Contains(stripped, "suspend "),
		Signature:     firstLine(strings.TrimSpace(ll.Text)),
	})

	if closedSameLine(stripped, opens, closes) {
		// The whole body sits on this line; record its calls and move
		// on without opening a function frame.
		if brace := strings.Index(stripped, "{"); brace >= 0 {
			for _, site := range relations.FindCalls(stripped[brace+1:], ll.StartLine) {
				s.result.Relationships = append(s.result.Relationships, types.Relationship{
					FromName:         qualified,
					ToName:           site.Target,
					RelationshipType: types.RelationshipCalls,
					Confidence:       site.Confidence,
					LineNumber:       site.Line,
					ColumnNumber:     site.Column + brace + 1,
					SourceContext:    firstLine(stripped),
				})
			}
		}
		s.addPattern("function_definition", qualified, ll.StartLine, relations.ConfidenceQualified)
		return true
	}

	s.stack.Push(scope.Frame{Name: name, Kind: scope.KindFunction, OpenDepth: depthAfter, StartLine: ll.StartLine})
	s.openSyms = append(s.openSyms, idx)
	s.fn = &activeFunction{
		symbolIdx:   idx,
		builder:     cflow.NewBuilder(qualified, ll.StartLine),
		sigStartIdx: ll.StartLine - 1,
	}
	s.addPattern("function_definition", qualified, ll.StartLine, relations.ConfidenceQualified)
	return true
}

var fieldDeclRe = regexp.MustCompile(`^\s*(?:[\w:<>,&*\[\]]+\s+)+[&*]*([A-Za-z_]\w*)\s*(?:=[^=;]*|\{[^;]*\})?;`)

// tryField records member variables declared at class level. Lines with
// parentheses are prototypes or initializer calls, not plain fields.
func (s *patternScan) tryField(stripped string, ll scope.LogicalLine) {
	if _, inClass := s.stack.EnclosingClass(); !inClass {
		return
	}
	if strings.Contains(stripped, "(") {
		return
	}
	m := fieldDeclRe.FindStringSubmatch(stripped)
	if m == nil {
		return
	}
	name := m[1]
	s.addSymbol(types.Symbol{
		Name:          name,
		QualifiedName: s.stack.Qualify(name),
		Kind:          types.SymbolKindField,
		FilePath:      s.filePath,
		StartLine:     ll.StartLine,
		EndLine:       ll.EndLine,
		Namespace:     s.stack.Namespace(),
		ParentScope:   s.stack.ParentScope(),
		Confidence:    relations.ConfidenceUnqualified,
		IsDefinition:  true,
		IsExported:    isExportedName(name, stripped),
		Signature:     firstLine(stripped),
	})
}

// statementLine handles a line inside a function body: control-flow
// blocks first so same-line calls inherit their flags.
func (s *patternScan) statementLine(stripped string, ll scope.LogicalLine, depthAfter, opens int) {
	singleLine := false

	blockType, blockOpts, matched := classifyControlLine(stripped)
	if matched {
		startDepth := depthAfter
		trimmed := strings.TrimSuffix(strings.TrimSpace(stripped), ";")
		if opens == 0 || strings.HasSuffix(trimmed, "}") {
			// Braceless body, or a block opened and closed on one line:
			// either way the block covers this line only.
			startDepth = depthAfter + 1
			singleLine = true
		}
		s.fn.builder.Open(blockType, ll.StartLine, startDepth, blockOpts)
	}

	s.callsAndFields(stripped, ll)

	if singleLine {
		s.fn.builder.CloseBelow(depthAfter, ll.EndLine)
	}
}

// classifyControlLine maps a statement line to a block type. Catch and
// finally outrank try because "} catch (E) {" also contains a brace,
// and bare else opens no block of its own.
func classifyControlLine(stripped string) (types.BlockType, cflow.BlockOptions, bool) {
	trimmed := strings.TrimSpace(stripped)
	// The "} while (cond);" tail of a do-while is the close of an
	// already-open loop, not a new one.
	if strings.HasPrefix(trimmed, "}") && strings.HasSuffix(trimmed, ";") {
		return types.BlockUnknown, cflow.BlockOptions{}, false
	}
	switch {
	case catchKeywordRe.MatchString(stripped):
		var exceptions []string
		if m := catchParamRe.FindStringSubmatch(stripped); m != nil {
			if t := trimCondition(m[1]); t != "" {
				exceptions = []string{t}
			}
		}
		return types.BlockCatch, cflow.BlockOptions{ExceptionTypes: exceptions}, true
	case finallyKeywordRe.MatchString(stripped):
		return types.BlockFinally, cflow.BlockOptions{}, true
	case tryKeywordRe.MatchString(stripped):
		return types.BlockTry, cflow.BlockOptions{}, true
	case ifKeywordRe.MatchString(stripped):
		return types.BlockConditional, cflow.BlockOptions{Condition: lineCondition(stripped)}, true
	case switchKeywordRe.MatchString(stripped):
		return types.BlockSwitch, cflow.BlockOptions{Condition: lineCondition(stripped)}, true
	}
	if lt := loopTypeOf(stripped); lt != types.LoopNone {
		return types.BlockLoop, cflow.BlockOptions{Condition: lineCondition(stripped), LoopType: lt}, true
	}
	return types.BlockUnknown, cflow.BlockOptions{}, false
}

func (s *patternScan) callsAndFields(stripped string, ll scope.LogicalLine) {
	caller := s.result.Symbols[s.fn.symbolIdx].QualifiedName

	for _, site := range relations.FindCalls(stripped, ll.StartLine) {
		call := s.fn.builder.Call(site.Target, site.Line, site.Column, site.CallType)
		s.fn.calls = append(s.fn.calls, call)

		s.result.Relationships = append(s.result.Relationships, types.Relationship{
			FromName:         caller,
			ToName:           site.Target,
			RelationshipType: types.RelationshipCalls,
			Confidence:       site.Confidence,
			LineNumber:       site.Line,
			ColumnNumber:     site.Column,
			SourceContext:    firstLine(stripped),
			IsConditional:    call.IsConditional,
			IsInLoop:         call.IsInLoop,
			IsInTryCatch:     call.IsInTryCatch,
		})
	}

	isConditional, isInLoop, isInTryCatch := s.fn.builder.Flags()
	for _, access := range relations.FindFieldAccesses(stripped, ll.StartLine) {
		// this/self receiver accesses carry no edge; nearly every
		// member function touches its own fields.
		if access.SelfRef {
			continue
		}
		s.result.Relationships = append(s.result.Relationships, types.Relationship{
			FromName:         caller,
			ToName:           access.Object + "." + access.Field,
			RelationshipType: access.Kind,
			Confidence:       0.4,
			LineNumber:       access.Line,
			ColumnNumber:     access.Column,
			UsagePattern:     access.Object + "." + access.Field,
			IsConditional:    isConditional,
			IsInLoop:         isInLoop,
			IsInTryCatch:     isInTryCatch,
		})
	}
}

// finishFunction closes the flow builder and applies the complexity
// gate: only functions estimated at or above the minimum keep their
// blocks, and only until the per-file cap fills.
func (s *patternScan) finishFunction(endLine int) {
	fn := s.fn
	s.fn = nil
	fn.builder.Finish(endLine)

	sym := &s.result.Symbols[fn.symbolIdx]
	sym.EndLine = endLine

	bodyEnd := endLine
	if bodyEnd > len(s.rawLines) {
		bodyEnd = len(s.rawLines)
	}
	bodyStart := fn.sigStartIdx
	if bodyStart > bodyEnd {
		bodyStart = bodyEnd
	}
	estimate := complexity.Estimate(s.rawLines[bodyStart:bodyEnd])
	sym.Complexity = estimate

	if !s.gate.Admit(estimate) {
		return
	}

	s.result.ControlFlowData.Blocks = append(s.result.ControlFlowData.Blocks, fn.builder.Blocks()...)
	s.result.ControlFlowData.Calls = append(s.result.ControlFlowData.Calls, fn.calls...)
	if s.e.opts.BuildFlowPaths {
		s.result.ControlFlowData.Paths = append(s.result.ControlFlowData.Paths, cflow.BuildPaths(fn.builder.Blocks())...)
	}
	sym.Complexity = fn.builder.Cyclomatic()
	sym.SetFeature("cognitive_complexity", fn.builder.Cognitive())
	s.result.Stats.ControlFlowAnalyzed++
}

func isControlKeywordName(name string) bool {
	switch lastNameSegment(name) {
	case "if", "else", "for", "while", "do", "switch", "catch", "try",
		"return", "sizeof", "new", "delete", "throw", "match", "select":
		return true
	}
	return false
}

// extractFlat handles indentation languages: symbols and imports only,
// with class membership inferred from indentation.
func (e *PatternExtractor) extractFlat(ctx context.Context, set *patternSet, rawLines []string, filePath string, result *types.ExtractionResult) {
	type openClass struct {
		name   string
		indent int
	}
	var classes []openClass

	indentOf := func(line string) int {
		n := 0
		for _, r := range line {
			switch r {
			case ' ':
				n++
			case '\t':
				n += 4
			default:
				return n
			}
		}
		return n
	}

	for i, raw := range rawLines {
		if i%256 == 0 && ctx.Err() != nil {
			return
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := indentOf(raw)
		for len(classes) > 0 && indent <= classes[len(classes)-1].indent {
			classes = classes[:len(classes)-1]
		}
		lineNo := i + 1

		if set.aliasRe != nil {
			if m := set.aliasRe.FindStringSubmatch(raw); m != nil {
				result.Patterns = append(result.Patterns, types.PatternInfo{
					PatternType: "namespace_alias",
					Name:        m[2] + "=" + m[1],
					LineNumber:  lineNo,
					Confidence:  relations.ConfidenceQualified,
				})
				continue
			}
		}
		if set.importRe != nil {
			if m := set.importRe.FindStringSubmatch(raw); m != nil {
				target := m[1]
				if target == "" {
					target = m[2]
				}
				result.Relationships = append(result.Relationships, types.Relationship{
					FromName:         filePath,
					ToName:           target,
					RelationshipType: types.RelationshipImports,
					Confidence:       relations.ConfidenceQualified,
					LineNumber:       lineNo,
				})
				continue
			}
		}
		if m := set.classRe.FindStringSubmatch(raw); m != nil {
			result.Symbols = append(result.Symbols, types.Symbol{
				Name:          m[1],
				QualifiedName: m[1],
				Kind:          types.SymbolKindClass,
				FilePath:      filePath,
				StartLine:     lineNo,
				EndLine:       lineNo,
				Confidence:    relations.ConfidenceQualified,
				IsDefinition:  true,
				IsExported:    !strings.HasPrefix(m[1], "_"),
				Signature:     trimmed,
			})
			classes = append(classes, openClass{name: m[1], indent: indent})
			continue
		}
		if m := set.functionRe.FindStringSubmatch(raw); m != nil {
			name := m[1]
			kind := types.SymbolKindFunction
			qualified := name
			parent := ""
			if len(classes) > 0 {
				kind = types.SymbolKindMethod
				parent = classes[len(classes)-1].name
				qualified = parent + scope.NamespaceSeparator + name
			}
			result.Symbols = append(result.Symbols, types.Symbol{
				Name:          name,
				QualifiedName: qualified,
				Kind:          kind,
				FilePath:      filePath,
				StartLine:     lineNo,
				EndLine:       lineNo,
				ParentScope:   parent,
				Confidence:    relations.ConfidenceUnqualified,
				IsDefinition:  true,
				IsExported:    !strings.HasPrefix(name, "_"),
				IsAsync:       strings.Contains(raw, "async def"),
				Signature:     trimmed,
			})
		}
	}
}
