// Package debounce delays a callback until a quiet period has passed since
// the last trigger.
package debounce

import (
	"sync"
	"time"

	"github.com/yaklabco/mdnote/pkg/clock"
)

// Debouncer runs the most recently triggered function once no new trigger has
// arrived for the configured delay. It is safe for concurrent use.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   clock.Timer
	pending func()
	gen     uint64
}

// New creates a Debouncer. A nil clk uses the real clock.
func New(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.DefaultClock{}
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger schedules fn, replacing any function still waiting and restarting
// the delay.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the waiting function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = nil
}

// Flush runs the waiting function immediately. It reports whether one ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = nil
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a function is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
