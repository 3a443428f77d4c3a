// Package debounce coalesces bursts of calls into a single delayed call, and
// numbers concurrent loads so that an older result never replaces a newer one.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input and catalog
// refreshes when nothing else is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer delays fn until no new Call has arrived for the configured delay.
// Only the value passed to the last Call of a burst is delivered.
//
// Each Call bumps a generation counter. A timer that fires after a newer Call
// (or after Close) sees a stale generation and does nothing, so a callback that
// already escaped timer.Stop can never run a superseded value.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	closed  bool
	value   T
}

// New creates a Debouncer. A non-positive delay falls back to DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call cancels any pending invocation and schedules fn(v) after the delay.
// After Close it does nothing.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.value = v
	d.pending = true

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Close cancels the pending invocation, if any, and makes later Calls
// no-ops. It reports whether an invocation was cancelled.
func (d *Debouncer[T]) Close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.closed = true
	wasPending := d.pending
	d.take()
	return wasPending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// take clears the pending state and returns the stored value. Caller holds mu.
func (d *Debouncer[T]) take() T {
	var zero T
	v := d.value
	d.value = zero
	d.pending = false
	d.timer = nil
	return v
}
