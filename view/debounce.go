package view

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into one run, delay after the last call.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	waiters []chan struct{}
}

// NewDebouncer creates a Debouncer that waits delay after the last Trigger
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, cancelling any run scheduled by an earlier Trigger.
// The returned channel closes once the run that absorbed this call has
// finished.
func (d *Debouncer) Trigger(fn func()) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	done := make(chan struct{})
	d.waiters = append(d.waiters, done)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// superseded after the timer had already fired
			d.mu.Unlock()
			return
		}
		waiters := d.waiters
		d.waiters = nil
		d.timer = nil
		d.mu.Unlock()

		fn()
		for _, w := range waiters {
			close(w)
		}
	})
	return done
}

// Stop cancels the pending run and releases its waiters
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	for _, w := range d.waiters {
		close(w)
	}
	d.waiters = nil
}
