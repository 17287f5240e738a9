package classify

import (
	"strings"
	"sync"

	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// Built-in matcher names.
const (
	// MatcherGeneric matches nodes whose kind starts with "comment".
	MatcherGeneric = "generic"

	// MatcherDocstring additionally matches string literals sitting in
	// documentation positions (sole statement of a function or class
	// body), as Python and friends use.
	MatcherDocstring = "docstring"
)

// Context carries what a matcher may consult beyond the node itself.
type Context struct {
	// BufferID identifies the buffer being classified.
	BufferID string

	// Provider gives access to structural queries.
	Provider syntax.Provider

	// Window scopes queries to the lines around the cursor.
	Window syntax.LineRange
}

// Matcher decides whether a node is comment-like.
//
// A returned error means the decision could not be made (query failure)
// and is reported upward as an Unknown verdict; it never means "no".
type Matcher interface {
	Match(node syntax.Node, ctx Context) (bool, error)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(node syntax.Node, ctx Context) (bool, error)

// Match implements Matcher.
func (f MatcherFunc) Match(node syntax.Node, ctx Context) (bool, error) {
	return f(node, ctx)
}

// Registry holds named matcher strategies. Languages select a matcher by
// name at configuration-resolution time.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
}

// NewRegistry creates a registry preloaded with the built-in matchers.
func NewRegistry() *Registry {
	r := &Registry{matchers: make(map[string]Matcher)}
	r.Register(MatcherGeneric, MatcherFunc(matchGeneric))
	r.Register(MatcherDocstring, MatcherFunc(matchDocstring))
	return r
}

// Register adds or replaces a matcher under the given name.
func (r *Registry) Register(name string, m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers[name] = m
}

// Lookup returns the matcher registered under name, falling back to the
// generic matcher for unknown names.
func (r *Registry) Lookup(name string) Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.matchers[name]; ok {
		return m
	}
	return r.matchers[MatcherGeneric]
}

// matchGeneric reports nodes whose syntactic kind begins with "comment".
// Grammars name their comment nodes "comment", "comment_block",
// "comment_line" and so on.
func matchGeneric(node syntax.Node, _ Context) (bool, error) {
	return strings.HasPrefix(node.Kind(), "comment"), nil
}

// DocstringQuery captures statements that are the sole statement of a
// function or class body and consist of a bare string literal. Exported
// so alternative providers can pre-register results for it.
const DocstringQuery = `
(function_definition
  body: (block . (expression_statement (string)) @docstring .))
(class_definition
  body: (block . (expression_statement (string)) @docstring .))
`

// matchDocstring extends the generic check to documentation strings:
// string literals whose enclosing statement is the sole statement of a
// function or class body.
func matchDocstring(node syntax.Node, ctx Context) (bool, error) {
	if ok, _ := matchGeneric(node, ctx); ok {
		return true, nil
	}
	if !strings.HasPrefix(node.Kind(), "string") {
		return false, nil
	}

	// Cursor may sit on an inner node of the literal; climb to the
	// outermost string-family node first.
	outer := node
	for p := outer.Parent(); p != nil && strings.HasPrefix(p.Kind(), "string"); p = p.Parent() {
		outer = p
	}
	parent := outer.Parent()
	if parent == nil {
		return false, nil
	}

	res, err := ctx.Provider.Query(ctx.BufferID, DocstringQuery, ctx.Window)
	if err != nil {
		return false, err
	}
	return res.Contains(parent), nil
}
