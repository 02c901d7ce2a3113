package extract

import (
	"strings"
	"sync"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/sci/internal/debug"
)

// languageSpec declares one grammar: the extensions it claims and the
// symbol query run against its trees.
type languageSpec struct {
	name       string
	extensions []string
	grammar    func() unsafe.Pointer
	query      string
}

var languageSpecs = []languageSpec{
	{
		name:       "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
		grammar:    tree_sitter_cpp.Language,
		query: `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (function_definition declarator: (function_declarator declarator: (qualified_identifier) @function.name)) @function
        (function_definition declarator: (function_declarator declarator: (field_identifier) @method.name)) @method
        (function_definition declarator: (function_declarator declarator: (destructor_name) @method.name)) @method
        (class_specifier name: (type_identifier) @class.name) @class
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
        (namespace_definition name: (namespace_identifier) @namespace.name) @namespace
        (alias_declaration name: (type_identifier) @type.name) @type
        (type_definition declarator: (type_identifier) @type.name) @type
        (preproc_include) @import
        (using_declaration) @import
    `,
	},
	{
		name:       "go",
		extensions: []string{".go"},
		grammar:    tree_sitter_go.Language,
		query: `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration name: (field_identifier) @method.name) @method
        (type_declaration (type_spec name: (type_identifier) @type.name)) @type
        (import_spec path: (interpreted_string_literal) @import.path) @import
    `,
	},
	{
		name:       "javascript",
		extensions: []string{".js", ".jsx", ".mjs"},
		grammar:    tree_sitter_javascript.Language,
		query: `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (variable_declarator
            name: (identifier) @function.name
            value: [(arrow_function) (function_expression)]) @function
        (method_definition name: (property_identifier) @method.name) @method
        (class_declaration name: (identifier) @class.name) @class
        (import_statement source: (string) @import.source) @import
    `,
	},
	{
		name:       "typescript",
		extensions: []string{".ts", ".tsx"},
		grammar:    tree_sitter_typescript.LanguageTypescript,
		query: `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (method_definition name: (property_identifier) @method.name) @method
        (class_declaration name: (type_identifier) @class.name) @class
        (interface_declaration name: (type_identifier) @class.name) @class
        (type_alias_declaration name: (type_identifier) @type.name) @type
        (enum_declaration name: (identifier) @enum.name) @enum
        (import_statement source: (string) @import.source) @import
    `,
	},
	{
		name:       "python",
		extensions: []string{".py"},
		grammar:    tree_sitter_python.Language,
		query: `
        (class_definition
            body: (block
                (function_definition name: (identifier) @method.name))) @method
        (function_definition name: (identifier) @function.name) @function
        (class_definition name: (identifier) @class.name) @class
        (import_statement) @import
        (import_from_statement) @import
    `,
	},
	{
		name:       "rust",
		extensions: []string{".rs"},
		grammar:    tree_sitter_rust.Language,
		query: `
        (impl_item
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (function_item name: (identifier) @function.name) @function
        (struct_item name: (type_identifier) @struct.name) @struct
        (enum_item name: (type_identifier) @enum.name) @enum
        (trait_item name: (type_identifier) @class.name) @class
        (type_item name: (type_identifier) @type.name) @type
        (use_declaration) @import
        (mod_item name: (identifier) @namespace.name) @namespace
    `,
	},
	{
		name:       "java",
		extensions: []string{".java"},
		grammar:    tree_sitter_java.Language,
		query: `
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (class_declaration name: (identifier) @class.name) @class
        (record_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @class.name) @class
        (enum_declaration name: (identifier) @enum.name) @enum
        (field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field
        (import_declaration) @import
    `,
	},
	{
		name:       "csharp",
		extensions: []string{".cs"},
		grammar:    tree_sitter_csharp.Language,
		query: `
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (class_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @class.name) @class
        (struct_declaration name: (identifier) @struct.name) @struct
        (enum_declaration name: (identifier) @enum.name) @enum
        (property_declaration name: (identifier) @field.name) @field
        (namespace_declaration name: (qualified_name) @namespace.name) @namespace
        (namespace_declaration name: (identifier) @namespace.name) @namespace
        (using_directive) @import
    `,
	},
	{
		name:       "zig",
		extensions: []string{".zig"},
		grammar:    tree_sitter_zig.Language,
		query: `
        (function_declaration (identifier) @function.name) @function
        (variable_declaration
          (identifier) @struct.name
          (struct_declaration) @struct)
    `,
	},
	{
		name:       "php",
		extensions: []string{".php", ".phtml"},
		grammar:    tree_sitter_php.LanguagePHP,
		query: `
        (class_declaration name: (name) @class.name) @class
        (interface_declaration name: (name) @class.name) @class
        (trait_declaration name: (name) @class.name) @class
        (enum_declaration name: (name) @enum.name) @enum
        (function_definition name: (name) @function.name) @function
        (method_declaration name: (name) @method.name) @method
        (namespace_definition name: (namespace_name) @namespace.name) @namespace
        (namespace_use_declaration) @import
    `,
	},
}

// patternOnlyLanguages claim extensions the pattern path understands
// without a grammar.
var patternOnlyLanguages = map[string]string{
	".kt":    "kotlin",
	".kts":   "kotlin",
	".swift": "swift",
	".rb":    "ruby",
	".scala": "scala",
	".m":     "objc",
	".mm":    "objc",
}

// langState holds one initialized grammar: its compiled query and a
// pool of parsers bound to the language. Parsers are not safe for
// concurrent use, so each extraction checks one out.
type langState struct {
	language *tree_sitter.Language
	query    *tree_sitter.Query
	pool     sync.Pool
}

func (s *langState) acquire() *tree_sitter.Parser {
	p, _ := s.pool.Get().(*tree_sitter.Parser)
	return p
}

func (s *langState) release(p *tree_sitter.Parser) {
	if p != nil {
		s.pool.Put(p)
	}
}

// Registry resolves file extensions to languages and owns lazy grammar
// initialization so unused grammars never load.
type Registry struct {
	mu     sync.RWMutex
	byExt  map[string]*languageSpec
	states map[string]*langState
	failed map[string]bool
}

// NewRegistry builds a registry over every compiled-in grammar. No
// grammar loads until a file of its language is extracted.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:  make(map[string]*languageSpec),
		states: make(map[string]*langState),
		failed: make(map[string]bool),
	}
	for i := range languageSpecs {
		spec := &languageSpecs[i]
		for _, ext := range spec.extensions {
			r.byExt[ext] = spec
		}
	}
	return r
}

// LanguageForExt names the language claiming an extension, tree-sitter
// backed or pattern-only. Unknown extensions report false.
func (r *Registry) LanguageForExt(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	if spec, ok := r.byExt[ext]; ok {
		return spec.name, true
	}
	if name, ok := patternOnlyLanguages[ext]; ok {
		return name, true
	}
	return "", false
}

// HasParser reports whether a grammar is compiled in for the extension.
// It does not initialize the grammar.
func (r *Registry) HasParser(ext string) bool {
	spec, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.failed[spec.name]
}

// state returns the initialized grammar for an extension, loading it on
// first use. A grammar whose query fails to compile is marked failed
// and never retried.
func (r *Registry) state(ext string) (*langState, bool) {
	spec, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}

	r.mu.RLock()
	st, ready := r.states[spec.name]
	bad := r.failed[spec.name]
	r.mu.RUnlock()
	if ready {
		return st, true
	}
	if bad {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ready = r.states[spec.name]; ready {
		return st, true
	}
	if r.failed[spec.name] {
		return nil, false
	}

	language := tree_sitter.NewLanguage(spec.grammar())
	query, _ := tree_sitter.NewQuery(language, spec.query)
	// The binding can return a typed nil error, so the query pointer is
	// the only reliable success signal.
	if query == nil {
		debug.LogExtract("query compilation failed for %s", spec.name)
		r.failed[spec.name] = true
		return nil, false
	}

	st = &langState{
		language: language,
		query:    query,
		pool: sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(language); err != nil {
					return nil
				}
				return p
			},
		},
	}
	r.states[spec.name] = st
	return st, true
}
