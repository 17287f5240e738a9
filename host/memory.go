package host

import (
	"fmt"
	"sync"

	"github.com/themissingcow/nvim-comment-wrap/event"
)

// BufferOptions holds a memory buffer's option values.
type BufferOptions struct {
	TextWidth           int
	FormatFlags         string
	CommentContinuation string
}

type memoryBuffer struct {
	opts     BufferOptions
	cursor   Cursor
	language string
}

// MemoryHost is an in-memory Host implementation for tests and the demo
// harness. All methods are safe for concurrent use, though the engine
// only drives it from one goroutine.
type MemoryHost struct {
	mu      sync.Mutex
	buffers map[string]*memoryBuffer
	active  string
	bus     *event.Bus
	keys    map[string]func()

	// Mutations counts every option write, letting tests assert that
	// nothing was touched.
	Mutations int
}

// NewMemoryHost creates a host with no buffers.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		buffers: make(map[string]*memoryBuffer),
		bus:     event.NewBus(),
		keys:    make(map[string]func()),
	}
}

// AddBuffer registers a buffer with initial option values and makes it
// active if it is the first one.
func (h *MemoryHost) AddBuffer(bufID, language string, opts BufferOptions) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffers[bufID] = &memoryBuffer{opts: opts, cursor: Cursor{Line: 1}, language: language}
	if h.active == "" {
		h.active = bufID
	}
}

// RemoveBuffer forgets a buffer.
func (h *MemoryHost) RemoveBuffer(bufID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.buffers, bufID)
	if h.active == bufID {
		h.active = ""
	}
}

// SetActive switches the focused buffer.
func (h *MemoryHost) SetActive(bufID string) {
	h.mu.Lock()
	h.active = bufID
	h.mu.Unlock()
}

// SetCursor moves the cursor in a buffer.
func (h *MemoryHost) SetCursor(bufID string, c Cursor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buffers[bufID]; ok {
		b.cursor = c
	}
}

// SetLanguage updates a buffer's language identifier.
func (h *MemoryHost) SetLanguage(bufID, language string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buffers[bufID]; ok {
		b.language = language
	}
}

// Options returns a copy of the buffer's current option values.
func (h *MemoryHost) Options(bufID string) (BufferOptions, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.buffers[bufID]
	if !ok {
		return BufferOptions{}, false
	}
	return b.opts, true
}

func (h *MemoryHost) buffer(bufID string) (*memoryBuffer, error) {
	b, ok := h.buffers[bufID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBuffer, bufID)
	}
	return b, nil
}

// TextWidth implements OptionStore.
func (h *MemoryHost) TextWidth(bufID string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return 0, err
	}
	return b.opts.TextWidth, nil
}

// SetTextWidth implements OptionStore.
func (h *MemoryHost) SetTextWidth(bufID string, width int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return err
	}
	b.opts.TextWidth = width
	h.Mutations++
	return nil
}

// FormatFlags implements OptionStore.
func (h *MemoryHost) FormatFlags(bufID string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return "", err
	}
	return b.opts.FormatFlags, nil
}

// SetFormatFlags implements OptionStore.
func (h *MemoryHost) SetFormatFlags(bufID string, flags string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return err
	}
	b.opts.FormatFlags = flags
	h.Mutations++
	return nil
}

// CommentContinuation implements OptionStore.
func (h *MemoryHost) CommentContinuation(bufID string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return "", err
	}
	return b.opts.CommentContinuation, nil
}

// SetCommentContinuation implements OptionStore.
func (h *MemoryHost) SetCommentContinuation(bufID string, pattern string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return err
	}
	b.opts.CommentContinuation = pattern
	h.Mutations++
	return nil
}

// ActiveBuffer implements Buffers.
func (h *MemoryHost) ActiveBuffer() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// CursorPosition implements Buffers.
func (h *MemoryHost) CursorPosition(bufID string) (Cursor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.buffer(bufID)
	if err != nil {
		return Cursor{}, err
	}
	return b.cursor, nil
}

// Language implements Buffers.
func (h *MemoryHost) Language(bufID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buffers[bufID]; ok {
		return b.language
	}
	return ""
}

// BindKey implements KeyBinder.
func (h *MemoryHost) BindKey(modes []string, sequence string, fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, mode := range modes {
		h.keys[mode+":"+sequence] = fn
	}
	return nil
}

// UnbindKey implements KeyBinder.
func (h *MemoryHost) UnbindKey(modes []string, sequence string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, mode := range modes {
		delete(h.keys, mode+":"+sequence)
	}
	return nil
}

// PressKey invokes the callback bound to the sequence in the given mode,
// returning false when nothing is bound.
func (h *MemoryHost) PressKey(mode, sequence string) bool {
	h.mu.Lock()
	fn, ok := h.keys[mode+":"+sequence]
	h.mu.Unlock()

	if !ok {
		return false
	}
	fn()
	return true
}

// BoundKeys returns the number of installed bindings.
func (h *MemoryHost) BoundKeys() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.keys)
}

// Events implements Host.
func (h *MemoryHost) Events() *event.Bus { return h.bus }

var _ Host = (*MemoryHost)(nil)
