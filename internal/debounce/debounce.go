// Package debounce coalesces bursts of triggers into a single trailing
// callback invocation.
package debounce

import (
	"sync"
	"time"
)

// Debouncer defers its callback until a quiet period has elapsed since
// the last trigger. Re-arming replaces the pending timer; timers never
// stack. Cancel logically invalidates any timer already racing toward
// its callback, so a stale firing observes the cancellation and no-ops.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // invalidates callbacks from superseded timers
	callback func()
}

// New creates a debouncer that runs callback after delay of quiet.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{delay: delay, callback: callback}
}

// Trigger schedules the callback to run after the debounce delay. Rapid
// repeated triggers within the delay window collapse into one run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending && d.seq == seq && d.callback != nil {
			d.pending = false
			d.mu.Unlock()
			d.callback()
			return
		}
		d.mu.Unlock()
	})
}

// Cancel drops any pending callback. A timer that already fired but has
// not yet run its body observes the bumped sequence and does nothing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a callback is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
