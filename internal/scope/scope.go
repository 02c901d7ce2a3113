// Package scope tracks lexical nesting during extraction and derives
// qualified symbol names from the active scope chain.
package scope

import "strings"

// Separator constants for qualified name construction. Nested classes
// join with a distinct separator so "A.B::f" inside namespace "A" can
// never collide with a symbol in namespace "A::B".
const (
	NamespaceSeparator   = "::"
	NestedClassSeparator = "."
)

// Kind classifies a scope frame
type Kind int

const (
	KindNamespace Kind = iota
	KindClass
	KindStruct
	KindEnum
	KindFunction
)

var kindStrings = map[Kind]string{
	KindNamespace: "namespace",
	KindClass:     "class",
	KindStruct:    "struct",
	KindEnum:      "enum",
	KindFunction:  "function",
}

// String returns a string representation of the scope kind
func (k Kind) String() string {
	if name, ok := kindStrings[k]; ok {
		return name
	}
	return "unknown"
}

// IsTypeLike reports whether the frame contributes to the class chain
// of a qualified name.
func (k Kind) IsTypeLike() bool {
	return k == KindClass || k == KindStruct || k == KindEnum
}

// Frame is one active enclosing scope. OpenDepth is the brace depth
// measured after the scope's opening brace was applied; the frame is
// popped once depth drops below it.
type Frame struct {
	Name      string
	Kind      Kind
	OpenDepth int
	StartLine int
}

// Stack is the ordered sequence of active enclosing scopes,
// outermost first.
type Stack struct {
	frames []Frame
}

// NewStack returns an empty scope stack.
func NewStack() *Stack {
	return &Stack{frames: make([]Frame, 0, 8)}
}

// Push adds a scope frame. The caller measures OpenDepth after the
// frame's opening brace.
func (s *Stack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// PopBelow removes and returns all frames whose OpenDepth exceeds the
// given brace depth, innermost first. Called after each line's brace
// delta is applied.
func (s *Stack) PopBelow(depth int) []Frame {
	var popped []Frame
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		if top.OpenDepth <= depth {
			break
		}
		s.frames = s.frames[:len(s.frames)-1]
		popped = append(popped, top)
	}
	return popped
}

// Len returns the number of active frames.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Top returns the innermost frame, or false when the stack is empty.
func (s *Stack) Top() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// Namespace joins the active namespace frames with the namespace
// separator, e.g. "app::net".
func (s *Stack) Namespace() string {
	var parts []string
	for _, f := range s.frames {
		if f.Kind == KindNamespace {
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, NamespaceSeparator)
}

// ClassChain joins the active class/struct frames with the nested-class
// separator, e.g. "Outer.Inner".
func (s *Stack) ClassChain() string {
	var parts []string
	for _, f := range s.frames {
		if f.Kind.IsTypeLike() {
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, NestedClassSeparator)
}

// EnclosingClass returns the innermost class or struct frame.
func (s *Stack) EnclosingClass() (Frame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Kind.IsTypeLike() {
			return s.frames[i], true
		}
	}
	return Frame{}, false
}

// EnclosingFunction returns the innermost function frame.
func (s *Stack) EnclosingFunction() (Frame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Kind == KindFunction {
			return s.frames[i], true
		}
	}
	return Frame{}, false
}

// Qualify builds a qualified name for a declaration made in the current
// scope. Derivation is purely positional, so re-parsing unchanged source
// always yields the same value.
func (s *Stack) Qualify(name string) string {
	// Already-qualified names pass through untouched
	if strings.Contains(name, NamespaceSeparator) {
		return name
	}

	var b strings.Builder
	if ns := s.Namespace(); ns != "" {
		b.WriteString(ns)
	}
	if chain := s.ClassChain(); chain != "" {
		if b.Len() > 0 {
			b.WriteString(NamespaceSeparator)
		}
		b.WriteString(chain)
	}
	if b.Len() == 0 {
		return name
	}
	b.WriteString(NamespaceSeparator)
	b.WriteString(name)
	return b.String()
}

// ParentScope returns the qualified name of the innermost enclosing
// symbol, used as the lookup key stored in Symbol.ParentScope.
func (s *Stack) ParentScope() string {
	if len(s.frames) == 0 {
		return ""
	}
	// Qualify the innermost frame's name against the frames above it
	inner := s.frames[len(s.frames)-1]
	outer := &Stack{frames: s.frames[:len(s.frames)-1]}
	return outer.Qualify(inner.Name)
}
