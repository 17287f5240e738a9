// Package classify decides whether a cursor position sits inside a
// comment-like syntactic region.
//
// Classification is a tri-state: in a comment, in regular code, or
// unknown when the syntax provider cannot answer. Unknown is distinct
// from "not in a comment" even though callers route both through the
// restore path; tests and logs need to tell them apart.
package classify

import (
	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

// Verdict is the result of classifying a cursor position.
type Verdict int

const (
	// Unknown means the syntax provider could not supply an answer
	// (tree unavailable, query compile failure).
	Unknown Verdict = iota

	// NotInComment means the position is in regular code.
	NotInComment

	// InComment means the position is inside a comment-like region.
	InComment
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case InComment:
		return "comment"
	case NotInComment:
		return "code"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Classifier resolves cursor positions to verdicts using a matcher
// strategy per language.
type Classifier struct {
	provider syntax.Provider
	matchers *Registry
}

// New creates a classifier over the given provider. A nil registry gets
// the built-in matchers.
func New(provider syntax.Provider, matchers *Registry) *Classifier {
	if matchers == nil {
		matchers = NewRegistry()
	}
	return &Classifier{provider: provider, matchers: matchers}
}

// Matchers returns the classifier's matcher registry.
func (c *Classifier) Matchers() *Registry { return c.matchers }

// Classify determines whether the cursor position in the buffer lies
// inside a comment-like region, using the named matcher strategy.
//
// The probe happens one column left of the cursor: with the cursor at
// end-of-line the enclosing node would otherwise widen to the parent
// block and misclassify the tail of a comment line.
func (c *Classifier) Classify(bufID, matcherName string, cursor syntax.Point) Verdict {
	probe := cursor
	if probe.Column > 0 {
		probe.Column--
	}

	node, err := c.provider.SmallestNamedNodeAt(bufID, probe)
	if err != nil {
		return Unknown
	}
	if node == nil {
		return NotInComment
	}

	ctx := Context{
		BufferID: bufID,
		Provider: c.provider,
		Window:   lineWindow(cursor.Row),
	}

	ok, err := c.matchers.Lookup(matcherName).Match(node, ctx)
	if err != nil {
		return Unknown
	}
	if ok {
		return InComment
	}
	return NotInComment
}

// lineWindow is the cursor's line plus one line of margin either side,
// keeping structural queries line-local.
func lineWindow(row int) syntax.LineRange {
	start := row - 1
	if start < 0 {
		start = 0
	}
	return syntax.LineRange{Start: start, End: row + 2}
}
