// Package sitter implements syntax.Provider on top of tree-sitter.
//
// The provider does not parse: the embedding host parses buffers with
// whatever grammar and cadence it likes and hands the resulting trees to
// SetTree. Handing over a new tree invalidates node handles from the old
// one, matching the syntax.Node validity contract.
package sitter

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// Provider adapts host-parsed tree-sitter trees to the syntax.Provider
// contract.
type Provider struct {
	mu      sync.RWMutex
	buffers map[string]*bufferTree
}

type bufferTree struct {
	tree   *tree_sitter.Tree
	source []byte
	lang   *tree_sitter.Language
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{buffers: make(map[string]*bufferTree)}
}

// SetTree installs the current parse tree for a buffer, replacing and
// closing any previous one.
func (p *Provider) SetTree(bufID string, tree *tree_sitter.Tree, source []byte, lang *tree_sitter.Language) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.buffers[bufID]; ok && prev.tree != nil {
		prev.tree.Close()
	}
	p.buffers[bufID] = &bufferTree{tree: tree, source: source, lang: lang}
}

// Drop forgets a buffer's tree, releasing its resources.
func (p *Provider) Drop(bufID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.buffers[bufID]; ok && prev.tree != nil {
		prev.tree.Close()
	}
	delete(p.buffers, bufID)
}

// SmallestNamedNodeAt implements syntax.Provider.
func (p *Provider) SmallestNamedNodeAt(bufID string, pos syntax.Point) (syntax.Node, error) {
	p.mu.RLock()
	bt, ok := p.buffers[bufID]
	p.mu.RUnlock()

	if !ok || bt.tree == nil {
		return nil, syntax.ErrTreeUnavailable
	}
	if pos.Row < 0 || pos.Column < 0 {
		return nil, nil
	}

	pt := tree_sitter.Point{Row: uint(pos.Row), Column: uint(pos.Column)}
	n := bt.tree.RootNode().NamedDescendantForPointRange(pt, pt)
	if n == nil {
		return nil, nil
	}
	return wrapNode(n), nil
}

// Query implements syntax.Provider. The query runs against the whole tree
// but only captures whose span intersects the line window are reported.
func (p *Provider) Query(bufID string, source string, window syntax.LineRange) (syntax.Result, error) {
	p.mu.RLock()
	bt, ok := p.buffers[bufID]
	p.mu.RUnlock()

	if !ok || bt.tree == nil {
		return nil, syntax.ErrTreeUnavailable
	}

	query, qerr := tree_sitter.NewQuery(bt.lang, source)
	if qerr != nil {
		return nil, fmt.Errorf("%w: %s", syntax.ErrQueryCompile, qerr.Error())
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		tree_sitter.Point{Row: uint(max(0, window.Start))},
		tree_sitter.Point{Row: uint(max(0, window.End))},
	)

	set := make(syntax.NodeSet)
	matches := cursor.Matches(query, bt.tree.RootNode(), bt.source)
	for m := matches.Next(); m != nil; m = matches.Next() {
		for i := range m.Captures {
			set.Add(wrapNode(&m.Captures[i].Node))
		}
	}
	return set, nil
}

// node adapts a tree-sitter node to syntax.Node.
type node struct {
	n *tree_sitter.Node
}

func wrapNode(n *tree_sitter.Node) syntax.Node {
	if n == nil {
		return nil
	}
	return &node{n: n}
}

func (w *node) ID() uint64   { return uint64(w.n.Id()) }
func (w *node) Kind() string { return w.n.Kind() }

func (w *node) Parent() syntax.Node {
	p := w.n.Parent()
	for p != nil && !p.IsNamed() {
		p = p.Parent()
	}
	return wrapNode(p)
}

func (w *node) StartPoint() syntax.Point {
	pt := w.n.StartPosition()
	return syntax.Point{Row: int(pt.Row), Column: int(pt.Column)}
}

func (w *node) EndPoint() syntax.Point {
	pt := w.n.EndPosition()
	return syntax.Point{Row: int(pt.Row), Column: int(pt.Column)}
}

var _ syntax.Provider = (*Provider)(nil)
