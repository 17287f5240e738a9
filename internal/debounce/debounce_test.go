package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTriggerCoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	d := New(30*time.Millisecond, func() { runs.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestTriggerRearms(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	time.Sleep(60 * time.Millisecond)
	d.Trigger()
	time.Sleep(60 * time.Millisecond)

	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2", got)
	}
}

func TestCancelDropsPending(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	if !d.IsPending() {
		t.Fatal("expected pending after trigger")
	}
	d.Cancel()
	if d.IsPending() {
		t.Fatal("still pending after cancel")
	}

	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, want 0", got)
	}
}

func TestCancelThenTrigger(t *testing.T) {
	var runs atomic.Int32
	d := New(10*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	d.Cancel()
	d.Trigger()

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}
