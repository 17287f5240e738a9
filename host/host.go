// Package host abstracts the editor the wrapping engine is embedded in.
//
// The engine only ever touches the host through these interfaces: a
// per-buffer option store, buffer/cursor introspection, key binding, and
// the event bus the host publishes lifecycle notifications on. Tests and
// the demo substitute MemoryHost for a real editor.
package host

import (
	"errors"

	"github.com/themissingcow/nvim-comment-wrap/event"
)

// ErrUnknownBuffer is reported for operations on buffers the host does
// not know about.
var ErrUnknownBuffer = errors.New("host: unknown buffer")

// Cursor is a host-native cursor position: 1-based line, 0-based column.
type Cursor struct {
	Line int
	Col  int
}

// OptionStore reads and writes the formatting options the engine manages,
// per buffer. Implementations map these onto the host's native settings.
type OptionStore interface {
	TextWidth(bufID string) (int, error)
	SetTextWidth(bufID string, width int) error

	// FormatFlags is the host's auto-format behavior as a string of
	// single-character flags.
	FormatFlags(bufID string) (string, error)
	SetFormatFlags(bufID string, flags string) error

	// CommentContinuation describes how continuation lines of comments
	// and lists are recognized. Opaque to the engine.
	CommentContinuation(bufID string) (string, error)
	SetCommentContinuation(bufID string, pattern string) error
}

// Buffers exposes buffer and cursor introspection.
type Buffers interface {
	// ActiveBuffer returns the ID of the focused buffer, or "" when
	// none is focused.
	ActiveBuffer() string

	// CursorPosition returns the cursor location in the buffer.
	CursorPosition(bufID string) (Cursor, error)

	// Language returns the buffer's language identifier, or "" when
	// not yet detected.
	Language(bufID string) string
}

// KeyBinder installs and removes key bindings.
type KeyBinder interface {
	BindKey(modes []string, sequence string, fn func()) error
	UnbindKey(modes []string, sequence string) error
}

// Host is the full editor surface the engine depends on.
type Host interface {
	OptionStore
	Buffers
	KeyBinder

	// Events returns the bus the host publishes lifecycle events on.
	Events() *event.Bus
}

// OptionSnapshot is a captured set of per-buffer option values, taken
// before the engine first modifies a buffer and used to restore it.
type OptionSnapshot struct {
	TextWidth           int
	FormatFlags         string
	CommentContinuation string
}

// Snapshot captures the buffer's current option values.
func Snapshot(s OptionStore, bufID string) (*OptionSnapshot, error) {
	width, err := s.TextWidth(bufID)
	if err != nil {
		return nil, err
	}
	flags, err := s.FormatFlags(bufID)
	if err != nil {
		return nil, err
	}
	comments, err := s.CommentContinuation(bufID)
	if err != nil {
		return nil, err
	}
	return &OptionSnapshot{
		TextWidth:           width,
		FormatFlags:         flags,
		CommentContinuation: comments,
	}, nil
}

// Restore writes the snapshot's values back to the buffer.
func (snap *OptionSnapshot) Restore(s OptionStore, bufID string) error {
	if err := s.SetTextWidth(bufID, snap.TextWidth); err != nil {
		return err
	}
	if err := s.SetFormatFlags(bufID, snap.FormatFlags); err != nil {
		return err
	}
	return s.SetCommentContinuation(bufID, snap.CommentContinuation)
}
