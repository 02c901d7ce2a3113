package resolve

import (
	"strings"

	"github.com/standardbeagle/sci/internal/scope"
)

// Context carries the lookup environment of one source position: the
// file being resolved, the enclosing namespace, the namespaces its
// imports bring into scope, and any local aliases.
type Context struct {
	FilePath  string
	Namespace string
	Imports   []string
	Aliases   map[string]string
}

// expandAlias rewrites the leading segment of name through the alias
// map, so "fs::path" resolves through "namespace fs = std::filesystem".
func (ctx *Context) expandAlias(name string) string {
	if ctx == nil || len(ctx.Aliases) == 0 {
		return name
	}
	head := name
	rest := ""
	if i := strings.Index(name, scope.NamespaceSeparator); i >= 0 {
		head, rest = name[:i], name[i:]
	}
	if full, ok := ctx.Aliases[head]; ok {
		return full + rest
	}
	return name
}

// namespaceChain returns the context namespace and each of its ancestor
// prefixes, innermost first. "a::b::c" yields ["a::b::c", "a::b", "a"].
func (ctx *Context) namespaceChain() []string {
	if ctx == nil || ctx.Namespace == "" {
		return nil
	}
	var chain []string
	ns := ctx.Namespace
	for {
		chain = append(chain, ns)
		i := strings.LastIndex(ns, scope.NamespaceSeparator)
		if i < 0 {
			break
		}
		ns = ns[:i]
	}
	return chain
}

// Resolve looks a name up in four steps: exact qualified match,
// qualification under the current namespace walking outward,
// qualification under each imported namespace, then a bare base-name
// match anywhere in the cache. The first hit wins; ties on the final
// step prefer an entry in the same file.
func (c *Cache) Resolve(name string, ctx *Context) (Entry, bool) {
	name = ctx.expandAlias(name)

	if strings.Contains(name, scope.NamespaceSeparator) {
		if e, ok := c.Lookup(name); ok {
			return e, true
		}
	}

	for _, ns := range ctx.namespaceChain() {
		if e, ok := c.Lookup(ns + scope.NamespaceSeparator + name); ok {
			return e, true
		}
	}

	if ctx != nil {
		for _, ns := range ctx.Imports {
			if e, ok := c.Lookup(ns + scope.NamespaceSeparator + name); ok {
				return e, true
			}
		}
	}

	candidates := c.LookupBase(baseName(name))
	if len(candidates) == 0 {
		return Entry{}, false
	}
	if ctx != nil {
		for _, e := range candidates {
			if e.FilePath == ctx.FilePath {
				return e, true
			}
		}
	}
	return candidates[0], true
}
