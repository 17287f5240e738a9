package host

import (
	"errors"
	"testing"
)

func newTestHost() *MemoryHost {
	h := NewMemoryHost()
	h.AddBuffer("buf1", "go", BufferOptions{
		TextWidth:           80,
		FormatFlags:         "cql",
		CommentContinuation: "://",
	})
	return h
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newTestHost()

	snap, err := Snapshot(h, "buf1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if err := h.SetTextWidth("buf1", 72); err != nil {
		t.Fatalf("SetTextWidth: %v", err)
	}
	if err := h.SetFormatFlags("buf1", "tcq"); err != nil {
		t.Fatalf("SetFormatFlags: %v", err)
	}
	if err := h.SetCommentContinuation("buf1", ":#"); err != nil {
		t.Fatalf("SetCommentContinuation: %v", err)
	}

	if err := snap.Restore(h, "buf1"); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	opts, _ := h.Options("buf1")
	want := BufferOptions{TextWidth: 80, FormatFlags: "cql", CommentContinuation: "://"}
	if opts != want {
		t.Errorf("after restore = %+v, want %+v", opts, want)
	}
}

func TestSnapshotUnknownBuffer(t *testing.T) {
	h := NewMemoryHost()

	if _, err := Snapshot(h, "nope"); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("Snapshot error = %v, want ErrUnknownBuffer", err)
	}
}

func TestMemoryHostMutationCount(t *testing.T) {
	h := newTestHost()

	if h.Mutations != 0 {
		t.Fatalf("fresh host has %d mutations", h.Mutations)
	}

	_ = h.SetTextWidth("buf1", 74)
	_ = h.SetFormatFlags("buf1", "tcqw")

	if h.Mutations != 2 {
		t.Errorf("Mutations = %d, want 2", h.Mutations)
	}
}

func TestMemoryHostKeyBinding(t *testing.T) {
	h := newTestHost()

	fired := 0
	if err := h.BindKey([]string{"n", "i"}, "<leader>ww", func() { fired++ }); err != nil {
		t.Fatalf("BindKey: %v", err)
	}

	if !h.PressKey("n", "<leader>ww") {
		t.Fatal("binding not found in normal mode")
	}
	if !h.PressKey("i", "<leader>ww") {
		t.Fatal("binding not found in insert mode")
	}
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}

	if err := h.UnbindKey([]string{"n", "i"}, "<leader>ww"); err != nil {
		t.Fatalf("UnbindKey: %v", err)
	}
	if h.PressKey("n", "<leader>ww") {
		t.Error("binding survived UnbindKey")
	}
	if h.BoundKeys() != 0 {
		t.Errorf("BoundKeys = %d, want 0", h.BoundKeys())
	}
}

func TestMemoryHostActiveBuffer(t *testing.T) {
	h := newTestHost()
	h.AddBuffer("buf2", "python", BufferOptions{TextWidth: 79})

	if got := h.ActiveBuffer(); got != "buf1" {
		t.Errorf("ActiveBuffer = %q, want buf1", got)
	}

	h.SetActive("buf2")
	if got := h.ActiveBuffer(); got != "buf2" {
		t.Errorf("ActiveBuffer = %q, want buf2", got)
	}

	h.RemoveBuffer("buf2")
	if got := h.ActiveBuffer(); got != "" {
		t.Errorf("ActiveBuffer after close = %q, want empty", got)
	}
}

func TestMemoryHostCursor(t *testing.T) {
	h := newTestHost()

	h.SetCursor("buf1", Cursor{Line: 12, Col: 4})
	c, err := h.CursorPosition("buf1")
	if err != nil {
		t.Fatalf("CursorPosition: %v", err)
	}
	if c != (Cursor{Line: 12, Col: 4}) {
		t.Errorf("cursor = %+v", c)
	}

	if _, err := h.CursorPosition("nope"); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("error = %v, want ErrUnknownBuffer", err)
	}
}
