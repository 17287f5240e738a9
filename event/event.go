// Package event carries editor lifecycle notifications between a host and
// the wrapping engine.
//
// Topics use hierarchical dot notation. Delivery is synchronous on the
// publisher's goroutine: the engine is cooperative and single-threaded, so
// handlers run to completion before Publish returns.
package event

import "github.com/themissingcow/nvim-comment-wrap/syntax"

// Topic represents a hierarchical event type using dot notation.
type Topic string

// Lifecycle topics the engine subscribes to.
const (
	// TopicBufferEntered is published when a buffer gains focus.
	TopicBufferEntered Topic = "buffer.entered"

	// TopicBufferLeft is published when a buffer loses focus.
	TopicBufferLeft Topic = "buffer.left"

	// TopicBufferClosed is published when a buffer is closed.
	TopicBufferClosed Topic = "buffer.closed"

	// TopicCursorMoved is published when the cursor moves, in any mode.
	TopicCursorMoved Topic = "cursor.moved"

	// TopicLanguageDetected is published when a buffer's language is
	// identified.
	TopicLanguageDetected Topic = "buffer.language.detected"
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// BufferEntered is the payload for TopicBufferEntered.
type BufferEntered struct {
	// BufferID is the unique identifier of the buffer.
	BufferID string
}

// BufferLeft is the payload for TopicBufferLeft.
type BufferLeft struct {
	// BufferID is the unique identifier of the buffer.
	BufferID string
}

// BufferClosed is the payload for TopicBufferClosed.
type BufferClosed struct {
	// BufferID is the unique identifier of the buffer.
	BufferID string
}

// CursorMoved is the payload for TopicCursorMoved.
type CursorMoved struct {
	// BufferID is the unique identifier of the buffer.
	BufferID string

	// Position is the new cursor position.
	Position syntax.Point

	// Insert reports whether the move happened in an insert-like mode.
	Insert bool
}

// LanguageDetected is the payload for TopicLanguageDetected.
type LanguageDetected struct {
	// BufferID is the unique identifier of the buffer.
	BufferID string

	// Language is the detected language identifier (e.g. "python").
	Language string
}
