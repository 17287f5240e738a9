// Package syntax defines the contract between the wrapping engine and the
// host editor's syntax-tree facility.
//
// The engine never parses source itself. It asks a Provider two questions:
// which named node encloses a position, and whether a node is among the
// results of a structural query. Everything else about parsing, incremental
// updates, and grammar management belongs to the host.
package syntax

import "errors"

// Provider failure taxonomy. These are the only errors the classifier
// distinguishes; anything else from a provider is treated like
// ErrTreeUnavailable.
var (
	// ErrTreeUnavailable indicates the provider has no parse tree for the
	// buffer (no parser installed, parse not yet run, buffer unknown).
	ErrTreeUnavailable = errors.New("syntax: tree unavailable")

	// ErrQueryCompile indicates a structural query failed to compile
	// against the buffer's grammar.
	ErrQueryCompile = errors.New("syntax: query compile failed")
)

// Point is a zero-based position in a buffer.
type Point struct {
	// Row is the zero-based line number.
	Row int

	// Column is the zero-based column number (in bytes).
	Column int
}

// LineRange is a half-open range of lines [Start, End) used to scope
// structural queries to a window around the cursor.
type LineRange struct {
	Start int
	End   int
}

// Contains reports whether the given row falls inside the range.
func (r LineRange) Contains(row int) bool {
	return row >= r.Start && row < r.End
}

// Node is a handle to a named node in a host-owned syntax tree.
//
// Handles are only valid until the host re-parses the buffer; the engine
// never retains one across events.
type Node interface {
	// ID uniquely identifies the node within its tree. It is used for
	// membership tests against query results.
	ID() uint64

	// Kind is the node's syntactic category name (e.g. "comment",
	// "string", "function_definition").
	Kind() string

	// Parent returns the enclosing named node, or nil at the root.
	Parent() Node

	// StartPoint and EndPoint bound the node's span.
	StartPoint() Point
	EndPoint() Point
}

// Result is the outcome of a structural query.
type Result interface {
	// Contains reports whether the node was captured by the query.
	Contains(n Node) bool
}

// Provider supplies syntax-tree information for buffers.
//
// Implementations wrap the host editor's parser. Errors returned here are
// folded into the classifier's tri-state verdict and never surface as
// user-visible failures.
type Provider interface {
	// SmallestNamedNodeAt returns the smallest named node whose span
	// contains pos, or nil (with a nil error) when no named node
	// encloses the position.
	SmallestNamedNodeAt(bufID string, pos Point) (Node, error)

	// Query runs a structural query against the buffer's tree,
	// restricted to the given line window, and returns the captured
	// nodes. A malformed query reports ErrQueryCompile.
	Query(bufID string, source string, window LineRange) (Result, error)
}

// NodeSet is a Result backed by node IDs.
type NodeSet map[uint64]struct{}

// Contains implements Result.
func (s NodeSet) Contains(n Node) bool {
	if n == nil {
		return false
	}
	_, ok := s[n.ID()]
	return ok
}

// Add records a node in the set.
func (s NodeSet) Add(n Node) {
	if n != nil {
		s[n.ID()] = struct{}{}
	}
}
