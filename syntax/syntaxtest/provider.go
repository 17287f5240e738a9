// Package syntaxtest provides a scriptable syntax.Provider for tests.
package syntaxtest

import (
	"sync"

	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// Node is a hand-built syntax node.
type Node struct {
	NodeID   uint64
	NodeKind string
	Par      *Node
	Start    syntax.Point
	End      syntax.Point
}

// NewNode builds a node with the given identity and kind.
func NewNode(id uint64, kind string) *Node {
	return &Node{NodeID: id, NodeKind: kind}
}

// WithParent links the node under a parent and returns it.
func (n *Node) WithParent(p *Node) *Node {
	n.Par = p
	return n
}

func (n *Node) ID() uint64   { return n.NodeID }
func (n *Node) Kind() string { return n.NodeKind }

func (n *Node) Parent() syntax.Node {
	if n.Par == nil {
		return nil
	}
	return n.Par
}

func (n *Node) StartPoint() syntax.Point { return n.Start }
func (n *Node) EndPoint() syntax.Point   { return n.End }

// Provider is a scriptable syntax.Provider. Tests assign the fields they
// care about; zero value behaves as "no enclosing node anywhere".
type Provider struct {
	mu sync.Mutex

	// NodeFunc, when set, decides the node for every lookup.
	NodeFunc func(bufID string, pos syntax.Point) (syntax.Node, error)

	// Nodes maps buffer IDs to the node returned for any position in
	// that buffer. Ignored when NodeFunc is set.
	Nodes map[string]syntax.Node

	// NodeErr, when set, is returned from every node lookup.
	NodeErr error

	// QueryResults maps query source text to the captured node set.
	QueryResults map[string]syntax.NodeSet

	// QueryErr, when set, is returned from every query.
	QueryErr error

	// Recorded calls, for asserting classification frequency and the
	// position actually probed.
	LookupCalls int
	LastBuffer  string
	LastPos     syntax.Point
	LastQuery   string
	LastWindow  syntax.LineRange
}

// SmallestNamedNodeAt implements syntax.Provider.
func (p *Provider) SmallestNamedNodeAt(bufID string, pos syntax.Point) (syntax.Node, error) {
	p.mu.Lock()
	p.LookupCalls++
	p.LastBuffer = bufID
	p.LastPos = pos
	p.mu.Unlock()

	if p.NodeErr != nil {
		return nil, p.NodeErr
	}
	if p.NodeFunc != nil {
		return p.NodeFunc(bufID, pos)
	}
	if n, ok := p.Nodes[bufID]; ok {
		return n, nil
	}
	return nil, nil
}

// Query implements syntax.Provider.
func (p *Provider) Query(bufID string, source string, window syntax.LineRange) (syntax.Result, error) {
	p.mu.Lock()
	p.LastBuffer = bufID
	p.LastQuery = source
	p.LastWindow = window
	p.mu.Unlock()

	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	if set, ok := p.QueryResults[source]; ok {
		return set, nil
	}
	return syntax.NodeSet{}, nil
}

// Lookups returns how many node lookups have been made.
func (p *Provider) Lookups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.LookupCalls
}

var _ syntax.Provider = (*Provider)(nil)
