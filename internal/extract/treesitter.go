package extract

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/sci/internal/cflow"
	"github.com/standardbeagle/sci/internal/complexity"
	"github.com/standardbeagle/sci/internal/debug"
	"github.com/standardbeagle/sci/internal/errors"
	"github.com/standardbeagle/sci/internal/relations"
	"github.com/standardbeagle/sci/internal/scope"
	"github.com/standardbeagle/sci/internal/types"
)

// SyntaxTreeExtractor parses files with tree-sitter and derives
// symbols, relationships, and control flow from the syntax tree.
type SyntaxTreeExtractor struct {
	registry *Registry
	opts     Options
}

// NewSyntaxTreeExtractor builds the tree-sitter strategy over a shared
// grammar registry.
func NewSyntaxTreeExtractor(registry *Registry, opts Options) *SyntaxTreeExtractor {
	return &SyntaxTreeExtractor{registry: registry, opts: opts}
}

// Strategy identifies the syntax-tree path.
func (e *SyntaxTreeExtractor) Strategy() types.Strategy {
	return types.StrategySyntaxTree
}

// capturedSymbol pairs a query-matched symbol with its node for the
// later flow and inheritance passes.
type capturedSymbol struct {
	symbol types.Symbol
	node   tree_sitter.Node
}

// Extract parses the file and populates the unified result. Any error
// leaves the caller free to rerun the file through the pattern path.
func (e *SyntaxTreeExtractor) Extract(ctx context.Context, filePath string, content []byte) (result *types.ExtractionResult, err error) {
	ext := filepath.Ext(filePath)
	langName, ok := e.registry.LanguageForExt(ext)
	if !ok {
		return nil, errors.NewExtractionError("parse", errors.ErrUnsupportedLanguage).WithFile(filePath, "")
	}
	state, ok := e.registry.state(ext)
	if !ok {
		return nil, errors.NewExtractionError("parse", errors.ErrNoParser).WithFile(filePath, langName)
	}

	parser := state.acquire()
	if parser == nil {
		return nil, errors.NewExtractionError("parse", errors.ErrNoParser).WithFile(filePath, langName)
	}
	defer state.release(parser)

	// The C library mutates input buffers, so parse a private copy.
	buffer := make([]byte, len(content))
	copy(buffer, content)

	defer func() {
		if r := recover(); r != nil {
			debug.LogExtract("tree-sitter panic in %s: %v", filePath, r)
			result = nil
			err = errors.NewExtractionError("parse", errors.ErrParserPanic).WithFile(filePath, langName).WithRecoverable(true)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := parser.Parse(buffer, nil)
	if tree == nil {
		return nil, errors.NewExtractionError("parse", errors.ErrParseFailed).WithFile(filePath, langName).WithRecoverable(true)
	}
	defer tree.Close()

	result = types.NewExtractionResult(filePath, langName)
	result.Strategy = types.StrategySyntaxTree
	result.Stats.LinesProcessed = countLines(buffer)

	captured := e.collectSymbols(state, tree, buffer, filePath, result)
	sort.SliceStable(captured, func(i, j int) bool {
		a, b := captured[i].symbol, captured[j].symbol
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartColumn < b.StartColumn
	})

	gate := complexity.NewGate(e.opts.MinComplexity, e.opts.MaxDeepFunctions)
	for i := range captured {
		cs := &captured[i]
		result.Symbols = append(result.Symbols, cs.symbol)

		switch {
		case cs.symbol.Kind.IsCallable():
			e.analyzeFunction(cs, buffer, gate, result)
		case cs.symbol.Kind == types.SymbolKindClass || cs.symbol.Kind == types.SymbolKindStruct:
			e.inheritanceEdges(cs, buffer, result)
		}
	}

	result.Stats.SymbolsExtracted = len(result.Symbols)
	result.Stats.RelationshipsFound = len(result.Relationships)
	return result, nil
}

// collectSymbols runs the language query and builds symbols from its
// captures.
func (e *SyntaxTreeExtractor) collectSymbols(state *langState, tree *tree_sitter.Tree, content []byte, filePath string, result *types.ExtractionResult) []capturedSymbol {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(state.query, tree.RootNode(), content)
	captureNames := state.query.CaptureNames()

	var captured []capturedSymbol
	names := make(map[string]string, 4)
	// Queries with both a scoped and an unscoped pattern capture the
	// same definition twice; the scoped capture wins.
	byStart := make(map[uint]int)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		for k := range names {
			delete(names, k)
		}
		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			if strings.Contains(captureName, ".") {
				names[captureName] = c.Node.Utf8Text(content)
			}
		}

		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			if strings.Contains(captureName, ".") {
				continue
			}
			if captureName == "import" {
				e.recordImport(&c.Node, content, filePath, names, result)
				continue
			}
			kind, ok := kindForCapture(captureName)
			if !ok {
				continue
			}
			name := names[captureName+".name"]
			if name == "" {
				continue
			}
			node := c.Node
			if prev, seen := byStart[node.StartByte()]; seen {
				if kind == types.SymbolKindMethod || kind == types.SymbolKindConstructor {
					captured[prev] = capturedSymbol{
						symbol: e.buildSymbol(&node, content, filePath, name, kind),
						node:   node,
					}
				}
				continue
			}
			byStart[node.StartByte()] = len(captured)
			captured = append(captured, capturedSymbol{
				symbol: e.buildSymbol(&node, content, filePath, name, kind),
				node:   node,
			})
		}
	}
	return captured
}

func (e *SyntaxTreeExtractor) buildSymbol(node *tree_sitter.Node, content []byte, filePath, name string, kind types.SymbolKind) types.Symbol {
	start := node.StartPosition()
	end := node.EndPosition()
	namespace, classChain := enclosingScope(node, content)

	qualified := qualify(namespace, classChain, name)
	signature := firstLine(node.Utf8Text(content))

	sym := types.Symbol{
		Name:          lastNameSegment(name),
		QualifiedName: qualified,
		Kind:          kind,
		FilePath:      filePath,
		StartLine:     int(start.Row) + 1,
		StartColumn:   int(start.Column) + 1,
		EndLine:       int(end.Row) + 1,
		EndColumn:     int(end.Column) + 1,
		Namespace:     namespace,
		ParentScope:   parentScope(namespace, classChain),
		Confidence:    relations.ConfidenceSyntaxTree,
		IsDefinition:  node.ChildByFieldName("body") != nil || kind.IsScopeOpening(),
		IsExported:    isExportedName(name, signature),
		IsAsync:       strings.Contains(signature, "async ") || strings.Contains(signature, "suspend "),
		Signature:     signature,
	}
	return sym
}

func (e *SyntaxTreeExtractor) recordImport(node *tree_sitter.Node, content []byte, filePath string, names map[string]string, result *types.ExtractionResult) {
	target := names["import.source"]
	if target == "" {
		target = names["import.path"]
	}
	if target == "" {
		target = firstLine(node.Utf8Text(content))
	}
	target = strings.TrimSuffix(strings.TrimSpace(target), ";")
	target = strings.Trim(target, `"'<>`)
	if target == "" {
		return
	}

	result.Relationships = append(result.Relationships, types.Relationship{
		FromName:         filePath,
		ToName:           target,
		RelationshipType: types.RelationshipImports,
		Confidence:       relations.ConfidenceSyntaxTree,
		LineNumber:       int(node.StartPosition().Row) + 1,
	})
}

// analyzeFunction gates the function on estimated complexity, then
// walks its body for blocks, calls, and call relationships.
func (e *SyntaxTreeExtractor) analyzeFunction(cs *capturedSymbol, content []byte, gate *complexity.Gate, result *types.ExtractionResult) {
	body := cs.node.ChildByFieldName("body")

	bodyText := cs.node.Utf8Text(content)
	estimate := complexity.Estimate(strings.Split(bodyText, "\n"))
	if cs.symbol.Complexity == 0 {
		cs.symbol.Complexity = estimate
		result.Symbols[len(result.Symbols)-1].Complexity = estimate
	}

	var builder *cflow.Builder
	if body != nil && gate.Admit(estimate) {
		builder = cflow.NewBuilder(cs.symbol.QualifiedName, cs.symbol.StartLine)
	}

	walkRoot := body
	if walkRoot == nil {
		walkRoot = &cs.node
	}
	e.walkFlow(walkRoot, content, builder, cs.symbol.QualifiedName, result, 0)

	if builder != nil {
		builder.Finish(cs.symbol.EndLine)
		result.ControlFlowData.Blocks = append(result.ControlFlowData.Blocks, builder.Blocks()...)
		if e.opts.BuildFlowPaths {
			result.ControlFlowData.Paths = append(result.ControlFlowData.Paths, cflow.BuildPaths(builder.Blocks())...)
		}
		cyclomatic := builder.Cyclomatic()
		result.Symbols[len(result.Symbols)-1].Complexity = cyclomatic
		result.Symbols[len(result.Symbols)-1].SetFeature("cognitive_complexity", builder.Cognitive())
		result.Stats.ControlFlowAnalyzed++
	}
}

// inheritanceEdges parses the declaration line's base clause.
func (e *SyntaxTreeExtractor) inheritanceEdges(cs *capturedSymbol, content []byte, result *types.ExtractionResult) {
	decl := firstLine(cs.node.Utf8Text(content))
	for _, base := range relations.ParseInheritance(decl) {
		relType := types.RelationshipInherits
		if base.Interface {
			relType = types.RelationshipImplements
		}
		result.Relationships = append(result.Relationships, types.Relationship{
			FromName:         cs.symbol.QualifiedName,
			ToName:           base.Name,
			RelationshipType: relType,
			Confidence:       0.9,
			LineNumber:       cs.symbol.StartLine,
			SourceContext:    decl,
			AccessLevel:      base.Access,
			IsVirtual:        base.IsVirtual,
		})
	}
}

// Per-grammar node kind sets for the flow walk. Kind names overlap
// heavily across grammars, so one set serves all languages.
var (
	conditionalNodeKinds = map[string]struct{}{
		"if_statement": {}, "if_expression": {},
	}
	loopNodeKinds = map[string]types.LoopType{
		"for_statement":         types.LoopFor,
		"for_expression":        types.LoopFor,
		"while_statement":       types.LoopWhile,
		"while_expression":      types.LoopWhile,
		"do_statement":          types.LoopDoWhile,
		"loop_expression":       types.LoopWhile,
		"for_range_loop":        types.LoopRangeFor,
		"enhanced_for_statement": types.LoopRangeFor,
		"foreach_statement":     types.LoopRangeFor,
		"for_in_statement":      types.LoopRangeFor,
	}
	switchNodeKinds = map[string]struct{}{
		"switch_statement": {}, "switch_expression": {}, "match_expression": {}, "match_statement": {},
	}
	tryNodeKinds = map[string]struct{}{
		"try_statement": {}, "try_expression": {},
	}
	catchNodeKinds = map[string]struct{}{
		"catch_clause": {}, "except_clause": {},
	}
	finallyNodeKinds = map[string]struct{}{
		"finally_clause": {},
	}
	callNodeKinds = map[string]struct{}{
		"call_expression": {}, "call": {}, "method_invocation": {},
		"invocation_expression": {}, "function_call_expression": {},
		"member_call_expression": {}, "scoped_call_expression": {},
	}
	// Statement-level kinds scanned for member reads and writes. The
	// scan runs once per statement, never on nested expressions, so a
	// member access yields exactly one edge.
	fieldStatementKinds = map[string]struct{}{
		"expression_statement": {}, "declaration": {},
		"assignment_statement": {}, "short_var_declaration": {},
		"local_declaration_statement": {}, "local_variable_declaration": {},
	}
)

const maxWalkDepth = 512

// walkFlow visits a function body. When builder is nil only calls are
// recorded; blocks require the function to have passed the gate.
func (e *SyntaxTreeExtractor) walkFlow(node *tree_sitter.Node, content []byte, builder *cflow.Builder, caller string, result *types.ExtractionResult, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}

	kind := node.Kind()
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1
	opened := false

	if builder != nil {
		switch {
		case isKind(conditionalNodeKinds, kind):
			builder.Open(types.BlockConditional, startLine, builder.OpenCount()+1, cflow.BlockOptions{
				Condition: conditionText(node, content),
			})
			opened = true
		case loopKind(kind) != types.LoopNone:
			builder.Open(types.BlockLoop, startLine, builder.OpenCount()+1, cflow.BlockOptions{
				Condition: conditionText(node, content),
				LoopType:  loopKind(kind),
			})
			opened = true
		case isKind(switchNodeKinds, kind):
			builder.Open(types.BlockSwitch, startLine, builder.OpenCount()+1, cflow.BlockOptions{
				Condition: conditionText(node, content),
			})
			opened = true
		case isKind(tryNodeKinds, kind):
			builder.Open(types.BlockTry, startLine, builder.OpenCount()+1, cflow.BlockOptions{})
			opened = true
		case isKind(catchNodeKinds, kind):
			builder.Open(types.BlockCatch, startLine, builder.OpenCount()+1, cflow.BlockOptions{
				ExceptionTypes: exceptionTypes(node, content),
			})
			opened = true
		case isKind(finallyNodeKinds, kind):
			builder.Open(types.BlockFinally, startLine, builder.OpenCount()+1, cflow.BlockOptions{})
			opened = true
		}
	}

	if isKind(callNodeKinds, kind) {
		e.recordCall(node, content, builder, caller, result)
	}
	if isKind(fieldStatementKinds, kind) {
		e.recordFieldAccesses(node, content, builder, caller, result)
	}
	// Conditions sit outside any statement node; scan them separately
	// so reads in "if (peer.count == 0)" are not lost.
	if isKind(conditionalNodeKinds, kind) || loopKind(kind) != types.LoopNone || isKind(switchNodeKinds, kind) {
		if cond := node.ChildByFieldName("condition"); cond != nil {
			e.recordFieldAccesses(cond, content, builder, caller, result)
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		e.walkFlow(node.NamedChild(i), content, builder, caller, result, depth+1)
	}

	if opened {
		builder.CloseTop(endLine)
	}
}

func (e *SyntaxTreeExtractor) recordCall(node *tree_sitter.Node, content []byte, builder *cflow.Builder, caller string, result *types.ExtractionResult) {
	target, callType := calleeOf(node, content)
	if target == "" || target == caller {
		return
	}
	line := int(node.StartPosition().Row) + 1
	column := int(node.StartPosition().Column) + 1

	var call types.ControlFlowCall
	if builder != nil {
		call = builder.Call(target, line, column, callType)
	} else {
		call = types.ControlFlowCall{
			CallerName:     caller,
			TargetFunction: target,
			LineNumber:     line,
			ColumnNumber:   column,
			CallType:       callType,
		}
	}
	result.ControlFlowData.Calls = append(result.ControlFlowData.Calls, call)

	result.Relationships = append(result.Relationships, types.Relationship{
		FromName:         caller,
		ToName:           target,
		RelationshipType: types.RelationshipCalls,
		Confidence:       relations.ConfidenceSyntaxTree,
		LineNumber:       line,
		ColumnNumber:     column,
		IsConditional:    call.IsConditional,
		IsInLoop:         call.IsInLoop,
		IsInTryCatch:     call.IsInTryCatch,
	})
}

// recordFieldAccesses scans one statement or condition for member reads
// and writes. Receiver accesses through this/self carry no edge; both
// strategies emit the same member-access surface.
func (e *SyntaxTreeExtractor) recordFieldAccesses(node *tree_sitter.Node, content []byte, builder *cflow.Builder, caller string, result *types.ExtractionResult) {
	text := firstLine(node.Utf8Text(content))
	line := int(node.StartPosition().Row) + 1

	var isConditional, isInLoop, isInTryCatch bool
	if builder != nil {
		isConditional, isInLoop, isInTryCatch = builder.Flags()
	}

	for _, access := range relations.FindFieldAccesses(text, line) {
		if access.SelfRef {
			continue
		}
		result.Relationships = append(result.Relationships, types.Relationship{
			FromName:         caller,
			ToName:           access.Object + "." + access.Field,
			RelationshipType: access.Kind,
			Confidence:       0.4,
			LineNumber:       access.Line,
			ColumnNumber:     int(node.StartPosition().Column) + access.Column,
			UsagePattern:     access.Object + "." + access.Field,
			IsConditional:    isConditional,
			IsInLoop:         isInLoop,
			IsInTryCatch:     isInTryCatch,
		})
	}
}

// calleeOf extracts the call target text and classifies the dispatch.
func calleeOf(node *tree_sitter.Node, content []byte) (string, types.CallType) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		fn = node.ChildByFieldName("name")
	}
	if fn == nil && node.NamedChildCount() > 0 {
		fn = node.NamedChild(0)
	}
	if fn == nil {
		return "", types.CallDirect
	}

	text := strings.TrimSpace(fn.Utf8Text(content))
	if text == "" || strings.ContainsAny(text, "\n({") {
		return "", types.CallDirect
	}

	if strings.Contains(text, "::") && !strings.ContainsAny(text, ".>") {
		return text, types.CallDirect
	}

	sep := strings.LastIndexAny(text, ".>")
	if sep >= 0 {
		receiver := text[:sep]
		receiver = strings.TrimSuffix(receiver, "-")
		receiver = strings.TrimSuffix(receiver, ".")
		method := text[sep+1:]
		if method == "" {
			return "", types.CallDirect
		}
		if receiver == "this" || receiver == "self" || receiver == "Self" {
			return method, types.CallSelfMethod
		}
		return method, types.CallMethod
	}
	return text, types.CallDirect
}

func conditionText(node *tree_sitter.Node, content []byte) string {
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		cond = node.ChildByFieldName("value")
	}
	if cond == nil {
		return ""
	}
	return trimCondition(cond.Utf8Text(content))
}

func exceptionTypes(node *tree_sitter.Node, content []byte) []string {
	param := node.ChildByFieldName("parameters")
	if param == nil {
		param = node.ChildByFieldName("parameter")
	}
	if param == nil {
		param = node.ChildByFieldName("type")
	}
	if param == nil {
		return nil
	}
	text := strings.Trim(trimCondition(param.Utf8Text(content)), "()")
	if text == "" {
		return nil
	}
	return []string{text}
}

func isKind(set map[string]struct{}, kind string) bool {
	_, ok := set[kind]
	return ok
}

func loopKind(kind string) types.LoopType {
	return loopNodeKinds[kind]
}

// Scope node kinds recognized while walking ancestors for qualified
// name construction.
var namespaceAncestorKinds = map[string]struct{}{
	"namespace_definition": {}, "namespace_declaration": {}, "mod_item": {}, "module": {},
}

var classAncestorKinds = map[string]struct{}{
	"class_specifier": {}, "struct_specifier": {}, "class_declaration": {},
	"struct_declaration": {}, "interface_declaration": {}, "class_definition": {},
	"trait_declaration": {}, "record_declaration": {}, "enum_declaration": {},
	"impl_item": {}, "trait_item": {},
}

// enclosingScope walks the ancestor chain and returns the namespace
// path and nested class chain of a node.
func enclosingScope(node *tree_sitter.Node, content []byte) (string, string) {
	var namespaces, classes []string
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		kind := parent.Kind()
		if _, ok := namespaceAncestorKinds[kind]; ok {
			if name := scopeNodeName(parent, content); name != "" {
				namespaces = append([]string{name}, namespaces...)
			}
			continue
		}
		if _, ok := classAncestorKinds[kind]; ok {
			if name := scopeNodeName(parent, content); name != "" {
				classes = append([]string{name}, classes...)
			}
		}
	}
	return strings.Join(namespaces, scope.NamespaceSeparator), strings.Join(classes, scope.NestedClassSeparator)
}

func scopeNodeName(node *tree_sitter.Node, content []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		name = node.ChildByFieldName("type")
	}
	if name == nil {
		return ""
	}
	return strings.TrimSpace(name.Utf8Text(content))
}

// qualify joins scope parts the same way the pattern path's scope stack
// does, so both strategies derive identical qualified names.
func qualify(namespace, classChain, name string) string {
	if strings.Contains(name, scope.NamespaceSeparator) {
		return name
	}
	var b strings.Builder
	if namespace != "" {
		b.WriteString(namespace)
	}
	if classChain != "" {
		if b.Len() > 0 {
			b.WriteString(scope.NamespaceSeparator)
		}
		b.WriteString(classChain)
	}
	if b.Len() == 0 {
		return name
	}
	b.WriteString(scope.NamespaceSeparator)
	b.WriteString(name)
	return b.String()
}

func parentScope(namespace, classChain string) string {
	if classChain == "" {
		return namespace
	}
	if namespace == "" {
		return classChain
	}
	return namespace + scope.NamespaceSeparator + classChain
}

func lastNameSegment(name string) string {
	if i := strings.LastIndex(name, scope.NamespaceSeparator); i >= 0 {
		name = name[i+2:]
	}
	return name
}

func isExportedName(name, signature string) bool {
	name = lastNameSegment(name)
	if name == "" || strings.HasPrefix(name, "_") {
		return false
	}
	if strings.Contains(signature, "private ") {
		return false
	}
	r := rune(name[0])
	return unicode.IsUpper(r) || strings.Contains(signature, "public ") || strings.Contains(signature, "export ") || strings.Contains(signature, "pub ")
}
