// Package demo is an interactive terminal harness: a small buffer, a
// movable cursor, and the engine reacting to it live.
package demo

import (
	"strings"
	"sync"

	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// Provider is a toy syntax.Provider that scans buffer text for a line
// comment leader. Everything from the leader to the end of the line is
// one comment node. Real hosts plug in a parser-backed provider; the
// demo only needs something honest enough to move the cursor through.
type Provider struct {
	mu     sync.Mutex
	leader string
	lines  map[string][]string
}

// NewProvider creates a provider recognizing the given comment leader.
func NewProvider(leader string) *Provider {
	return &Provider{leader: leader, lines: make(map[string][]string)}
}

// SetText replaces the buffer's text.
func (p *Provider) SetText(bufID, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines[bufID] = strings.Split(text, "\n")
}

// Lines returns the buffer's text lines.
func (p *Provider) Lines(bufID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines[bufID]
}

type commentNode struct {
	id    uint64
	start syntax.Point
	end   syntax.Point
}

func (n *commentNode) ID() uint64               { return n.id }
func (n *commentNode) Kind() string             { return "comment" }
func (n *commentNode) Parent() syntax.Node      { return nil }
func (n *commentNode) StartPoint() syntax.Point { return n.start }
func (n *commentNode) EndPoint() syntax.Point   { return n.end }

// SmallestNamedNodeAt implements syntax.Provider. Positions at or after
// the comment leader are inside the comment node; everything else has no
// enclosing named node.
func (p *Provider) SmallestNamedNodeAt(bufID string, pos syntax.Point) (syntax.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines, ok := p.lines[bufID]
	if !ok {
		return nil, syntax.ErrTreeUnavailable
	}
	if pos.Row < 0 || pos.Row >= len(lines) {
		return nil, nil
	}
	line := lines[pos.Row]
	idx := strings.Index(line, p.leader)
	if idx < 0 || pos.Column < idx {
		return nil, nil
	}
	return &commentNode{
		id:    uint64(pos.Row) + 1,
		start: syntax.Point{Row: pos.Row, Column: idx},
		end:   syntax.Point{Row: pos.Row, Column: len(line)},
	}, nil
}

// Query implements syntax.Provider. The scanner has no structural
// queries; nothing is ever captured.
func (p *Provider) Query(bufID, source string, window syntax.LineRange) (syntax.Result, error) {
	return syntax.NodeSet{}, nil
}

var _ syntax.Provider = (*Provider)(nil)
