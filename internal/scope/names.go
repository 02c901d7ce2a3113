package scope

import "strings"

// IsDestructor reports whether a member name is a destructor.
func IsDestructor(name string) bool {
	return strings.HasPrefix(name, "~")
}

// IsConstructor reports whether a member name declares a constructor of
// the enclosing class. Prefix matching tolerates the parameter clutter
// of copy and move constructors captured into the name.
func IsConstructor(name, className string) bool {
	if className == "" || name == "" {
		return false
	}
	if name == className {
		return true
	}
	return strings.HasPrefix(name, className) && !isIdentifierChar(rune(name[len(className)]))
}

// IsForwardDeclaration reports whether a declaration line ends in a
// semicolon without opening a body. Forward declarations are recorded
// with lower confidence and never pushed onto the scope stack.
func IsForwardDeclaration(line string) bool {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasSuffix(trimmed, ";") {
		return false
	}
	return !strings.Contains(trimmed, "{")
}

// SplitQualified splits a possibly qualified name into its scope prefix
// and base name. "A::B::f" yields ("A::B", "f"); unqualified names
// yield an empty prefix.
func SplitQualified(name string) (prefix, base string) {
	idx := strings.LastIndex(name, NamespaceSeparator)
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+len(NamespaceSeparator):]
}

func isIdentifierChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
