package classify

import (
	"errors"
	"testing"

	"github.com/themissingcow/nvim-comment-wrap/syntax"
	"github.com/themissingcow/nvim-comment-wrap/syntax/syntaxtest"
)

func TestClassifyGeneric(t *testing.T) {
	tests := []struct {
		name string
		node syntax.Node
		err  error
		want Verdict
	}{
		{
			name: "comment node",
			node: syntaxtest.NewNode(1, "comment"),
			want: InComment,
		},
		{
			name: "block comment node",
			node: syntaxtest.NewNode(2, "comment_block"),
			want: InComment,
		},
		{
			name: "code node",
			node: syntaxtest.NewNode(3, "identifier"),
			want: NotInComment,
		},
		{
			name: "no enclosing node",
			node: nil,
			want: NotInComment,
		},
		{
			name: "tree unavailable",
			err:  syntax.ErrTreeUnavailable,
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &syntaxtest.Provider{
				Nodes:   map[string]syntax.Node{},
				NodeErr: tt.err,
			}
			if tt.node != nil {
				p.Nodes["buf1"] = tt.node
			}

			c := New(p, nil)
			got := c.Classify("buf1", MatcherGeneric, syntax.Point{Row: 0, Column: 4})
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyProbesOneColumnLeft(t *testing.T) {
	p := &syntaxtest.Provider{}
	c := New(p, nil)

	c.Classify("buf1", MatcherGeneric, syntax.Point{Row: 2, Column: 7})
	if p.LastPos != (syntax.Point{Row: 2, Column: 6}) {
		t.Errorf("probed %v, want column left of cursor", p.LastPos)
	}

	// Column 0 cannot move further left.
	c.Classify("buf1", MatcherGeneric, syntax.Point{Row: 2, Column: 0})
	if p.LastPos != (syntax.Point{Row: 2, Column: 0}) {
		t.Errorf("probed %v, want column 0", p.LastPos)
	}
}

func TestClassifyUnknownMatcherFallsBackToGeneric(t *testing.T) {
	p := &syntaxtest.Provider{
		Nodes: map[string]syntax.Node{"buf1": syntaxtest.NewNode(1, "comment")},
	}
	c := New(p, nil)

	if got := c.Classify("buf1", "no-such-matcher", syntax.Point{}); got != InComment {
		t.Errorf("Classify() = %v, want InComment", got)
	}
}

func TestClassifyDocstring(t *testing.T) {
	stmt := syntaxtest.NewNode(10, "expression_statement")
	docstring := syntaxtest.NewNode(11, "string").WithParent(stmt)
	inner := syntaxtest.NewNode(12, "string_content").WithParent(docstring)
	plainStmt := syntaxtest.NewNode(20, "expression_statement")
	plainString := syntaxtest.NewNode(21, "string").WithParent(plainStmt)

	captured := syntax.NodeSet{}
	captured.Add(stmt)

	tests := []struct {
		name     string
		node     syntax.Node
		results  map[string]syntax.NodeSet
		queryErr error
		want     Verdict
	}{
		{
			name:    "string is a docstring",
			node:    docstring,
			results: map[string]syntax.NodeSet{DocstringQuery: captured},
			want:    InComment,
		},
		{
			name:    "cursor on inner string node",
			node:    inner,
			results: map[string]syntax.NodeSet{DocstringQuery: captured},
			want:    InComment,
		},
		{
			name:    "ordinary string literal",
			node:    plainString,
			results: map[string]syntax.NodeSet{DocstringQuery: captured},
			want:    NotInComment,
		},
		{
			name: "comment still matches",
			node: syntaxtest.NewNode(30, "comment"),
			want: InComment,
		},
		{
			name: "non-string code node",
			node: syntaxtest.NewNode(31, "identifier"),
			want: NotInComment,
		},
		{
			name:     "query compile failure",
			node:     docstring,
			queryErr: syntax.ErrQueryCompile,
			want:     Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &syntaxtest.Provider{
				Nodes:        map[string]syntax.Node{"buf1": tt.node},
				QueryResults: tt.results,
				QueryErr:     tt.queryErr,
			}
			c := New(p, nil)

			got := c.Classify("buf1", MatcherDocstring, syntax.Point{Row: 5, Column: 8})
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDocstringQueryWindow(t *testing.T) {
	stmt := syntaxtest.NewNode(10, "expression_statement")
	docstring := syntaxtest.NewNode(11, "string").WithParent(stmt)

	p := &syntaxtest.Provider{
		Nodes: map[string]syntax.Node{"buf1": docstring},
	}
	c := New(p, nil)

	c.Classify("buf1", MatcherDocstring, syntax.Point{Row: 5, Column: 8})
	if p.LastWindow != (syntax.LineRange{Start: 4, End: 7}) {
		t.Errorf("query window = %v, want cursor line with one line margin", p.LastWindow)
	}

	// Window clamps at the top of the buffer.
	c.Classify("buf1", MatcherDocstring, syntax.Point{Row: 0, Column: 8})
	if p.LastWindow != (syntax.LineRange{Start: 0, End: 2}) {
		t.Errorf("query window = %v, want clamped window", p.LastWindow)
	}
}

func TestRegistryRegisterCustomMatcher(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("lua-strings", MatcherFunc(func(node syntax.Node, _ Context) (bool, error) {
		called = true
		return node.Kind() == "string", nil
	}))

	p := &syntaxtest.Provider{
		Nodes: map[string]syntax.Node{"buf1": syntaxtest.NewNode(1, "string")},
	}
	c := New(p, r)

	if got := c.Classify("buf1", "lua-strings", syntax.Point{}); got != InComment {
		t.Errorf("Classify() = %v, want InComment", got)
	}
	if !called {
		t.Error("custom matcher was not invoked")
	}
}

func TestMatcherErrorIsNotFalse(t *testing.T) {
	r := NewRegistry()
	r.Register("failing", MatcherFunc(func(syntax.Node, Context) (bool, error) {
		return false, errors.New("backend gone")
	}))

	p := &syntaxtest.Provider{
		Nodes: map[string]syntax.Node{"buf1": syntaxtest.NewNode(1, "identifier")},
	}
	c := New(p, r)

	if got := c.Classify("buf1", "failing", syntax.Point{}); got != Unknown {
		t.Errorf("Classify() = %v, want Unknown", got)
	}
}
