package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualify_NamespaceAndClass(t *testing.T) {
	s := NewStack()
	s.Push(Frame{Name: "app", Kind: KindNamespace, OpenDepth: 1})
	s.Push(Frame{Name: "net", Kind: KindNamespace, OpenDepth: 2})
	s.Push(Frame{Name: "Connection", Kind: KindClass, OpenDepth: 3})

	assert.Equal(t, "app::net", s.Namespace())
	assert.Equal(t, "Connection", s.ClassChain())
	assert.Equal(t, "app::net::Connection::open", s.Qualify("open"))
}

func TestQualify_NestedClassSeparatorAvoidsCollision(t *testing.T) {
	// namespace A { class B { class C { f } } }  vs  namespace A::B::C { f }
	viaClasses := NewStack()
	viaClasses.Push(Frame{Name: "A", Kind: KindNamespace, OpenDepth: 1})
	viaClasses.Push(Frame{Name: "B", Kind: KindClass, OpenDepth: 2})
	viaClasses.Push(Frame{Name: "C", Kind: KindClass, OpenDepth: 3})

	viaNamespaces := NewStack()
	viaNamespaces.Push(Frame{Name: "A", Kind: KindNamespace, OpenDepth: 1})
	viaNamespaces.Push(Frame{Name: "B", Kind: KindNamespace, OpenDepth: 2})
	viaNamespaces.Push(Frame{Name: "C", Kind: KindNamespace, OpenDepth: 3})

	assert.Equal(t, "A::B.C::f", viaClasses.Qualify("f"))
	assert.Equal(t, "A::B::C::f", viaNamespaces.Qualify("f"))
	assert.NotEqual(t, viaClasses.Qualify("f"), viaNamespaces.Qualify("f"))
}

func TestQualify_NestedClasses(t *testing.T) {
	s := NewStack()
	s.Push(Frame{Name: "Outer", Kind: KindClass, OpenDepth: 1})
	s.Push(Frame{Name: "Inner", Kind: KindStruct, OpenDepth: 2})

	assert.Equal(t, "Outer.Inner", s.ClassChain())
	assert.Equal(t, "Outer.Inner::value", s.Qualify("value"))
}

func TestQualify_Deterministic(t *testing.T) {
	build := func() string {
		s := NewStack()
		s.Push(Frame{Name: "core", Kind: KindNamespace, OpenDepth: 1})
		s.Push(Frame{Name: "Widget", Kind: KindClass, OpenDepth: 2})
		return s.Qualify("render")
	}
	first := build()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build())
	}
}

func TestQualify_AlreadyQualifiedPassesThrough(t *testing.T) {
	s := NewStack()
	s.Push(Frame{Name: "app", Kind: KindNamespace, OpenDepth: 1})
	assert.Equal(t, "A::f", s.Qualify("A::f"))
}

func TestPopBelow(t *testing.T) {
	s := NewStack()
	s.Push(Frame{Name: "ns", Kind: KindNamespace, OpenDepth: 1})
	s.Push(Frame{Name: "Cls", Kind: KindClass, OpenDepth: 2})
	s.Push(Frame{Name: "f", Kind: KindFunction, OpenDepth: 3})

	popped := s.PopBelow(2)
	require.Len(t, popped, 1)
	assert.Equal(t, "f", popped[0].Name)
	assert.Equal(t, 2, s.Len())

	popped = s.PopBelow(0)
	require.Len(t, popped, 2)
	assert.Equal(t, "Cls", popped[0].Name) // innermost first
	assert.Equal(t, "ns", popped[1].Name)
	assert.Equal(t, 0, s.Len())
}

func TestParentScope(t *testing.T) {
	s := NewStack()
	assert.Equal(t, "", s.ParentScope())

	s.Push(Frame{Name: "app", Kind: KindNamespace, OpenDepth: 1})
	assert.Equal(t, "app", s.ParentScope())

	s.Push(Frame{Name: "Widget", Kind: KindClass, OpenDepth: 2})
	assert.Equal(t, "app::Widget", s.ParentScope())
}

func TestEnclosing(t *testing.T) {
	s := NewStack()
	s.Push(Frame{Name: "ns", Kind: KindNamespace, OpenDepth: 1})
	s.Push(Frame{Name: "Cls", Kind: KindClass, OpenDepth: 2})
	s.Push(Frame{Name: "method", Kind: KindFunction, OpenDepth: 3})

	cls, ok := s.EnclosingClass()
	require.True(t, ok)
	assert.Equal(t, "Cls", cls.Name)

	fn, ok := s.EnclosingFunction()
	require.True(t, ok)
	assert.Equal(t, "method", fn.Name)
}

func TestBraceTracker_Basic(t *testing.T) {
	tr := NewBraceTracker()

	opens, closes := tr.Apply("void f() {")
	assert.Equal(t, 1, opens)
	assert.Equal(t, 0, closes)
	assert.Equal(t, 1, tr.Depth())

	opens, closes = tr.Apply("  if (x) { y(); }")
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, tr.Depth())

	tr.Apply("}")
	assert.Equal(t, 0, tr.Depth())
}

func TestBraceTracker_IgnoresStringsAndComments(t *testing.T) {
	tr := NewBraceTracker()

	tr.Apply(`printf("{{{");`)
	assert.Equal(t, 0, tr.Depth())

	tr.Apply("// closing } here")
	assert.Equal(t, 0, tr.Depth())

	tr.Apply("/* { */ {")
	assert.Equal(t, 1, tr.Depth())

	tr.Apply("char c = '{';")
	assert.Equal(t, 1, tr.Depth())
}

func TestBraceTracker_BlockCommentSpansLines(t *testing.T) {
	tr := NewBraceTracker()

	tr.Apply("/* start of comment {")
	assert.True(t, tr.InBlockComment())
	assert.Equal(t, 0, tr.Depth())

	tr.Apply("still commented {{{")
	assert.Equal(t, 0, tr.Depth())

	tr.Apply("end */ {")
	assert.False(t, tr.InBlockComment())
	assert.Equal(t, 1, tr.Depth())
}

func TestBraceTracker_ClampsNegativeDepth(t *testing.T) {
	tr := NewBraceTracker()
	tr.Apply("}}}")
	assert.Equal(t, 0, tr.Depth())
}

func TestJoinLogicalLines_MultiLineSignature(t *testing.T) {
	lines := []string{
		"int compute(int a,",
		"            int b,",
		"            int c) {",
		"    return a + b + c;",
		"}",
	}

	logical := JoinLogicalLines(lines)
	require.Len(t, logical, 3)

	assert.Equal(t, 1, logical[0].StartLine)
	assert.Equal(t, 3, logical[0].EndLine)
	assert.Contains(t, logical[0].Text, "int compute(int a, int b, int c) {")

	assert.Equal(t, 4, logical[1].StartLine)
	assert.Equal(t, 5, logical[2].StartLine)
}

func TestJoinLogicalLines_BalancedLinesUntouched(t *testing.T) {
	lines := []string{"void f() {", "  g();", "}"}
	logical := JoinLogicalLines(lines)
	require.Len(t, logical, 3)
	for i, ll := range logical {
		assert.Equal(t, i+1, ll.StartLine)
		assert.Equal(t, i+1, ll.EndLine)
		assert.Equal(t, lines[i], ll.Text)
	}
}

func TestJoinLogicalLines_BoundedJoin(t *testing.T) {
	lines := make([]string, 20)
	lines[0] = "f(a,"
	for i := 1; i < 20; i++ {
		lines[i] = "b,"
	}
	logical := JoinLogicalLines(lines)
	// First logical line stops at the join bound instead of eating the file
	assert.LessOrEqual(t, logical[0].EndLine-logical[0].StartLine+1, maxJoinedLines)
}

func TestIsConstructor(t *testing.T) {
	assert.True(t, IsConstructor("Widget", "Widget"))
	assert.False(t, IsConstructor("Widget2", "Widget"))
	assert.False(t, IsConstructor("render", "Widget"))
	assert.False(t, IsConstructor("Widget", ""))
}

func TestIsDestructor(t *testing.T) {
	assert.True(t, IsDestructor("~Widget"))
	assert.False(t, IsDestructor("Widget"))
}

func TestIsForwardDeclaration(t *testing.T) {
	assert.True(t, IsForwardDeclaration("class Widget;"))
	assert.True(t, IsForwardDeclaration("void helper(int x);  "))
	assert.False(t, IsForwardDeclaration("class Widget {"))
	assert.False(t, IsForwardDeclaration("struct P { int x; };"))
	assert.False(t, IsForwardDeclaration("int x = 1"))
}

func TestSplitQualified(t *testing.T) {
	prefix, base := SplitQualified("A::B::f")
	assert.Equal(t, "A::B", prefix)
	assert.Equal(t, "f", base)

	prefix, base = SplitQualified("f")
	assert.Equal(t, "", prefix)
	assert.Equal(t, "f", base)
}
