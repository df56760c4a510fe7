// Package clock abstracts wall time and timers so debounce windows, scroll
// settle delays and autosave ticks can be driven by tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock reports the current time and schedules callbacks.
type Clock interface {
	Now() time.Time

	// AfterFunc calls fn in its own goroutine (or, for TestClock, on the
	// goroutine advancing time) once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// DefaultClock uses the time package.
type DefaultClock struct{}

// Now returns time.Now.
func (DefaultClock) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (DefaultClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// TestClock is a manually advanced clock. Timer callbacks run synchronously
// inside FastForward, in deadline order.
type TestClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*testTimer
	seq    int
}

type testTimer struct {
	clock *TestClock
	when  time.Time
	seq   int
	fn    func()
	done  bool
}

// NewTestClock returns a TestClock frozen at the current time.
func NewTestClock() *TestClock {
	return NewTestClockAt(time.Now())
}

// NewTestClockAt returns a TestClock frozen at date.
func NewTestClockAt(date time.Time) *TestClock {
	return &TestClock{now: date}
}

// Now returns the frozen time.
func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules fn to run when the clock is advanced past d.
func (c *TestClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	timer := &testTimer{clock: c, when: c.now.Add(d), seq: c.seq, fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

// FastForward advances the clock by d, firing every timer that comes due,
// including timers scheduled by callbacks within the window.
func (c *TestClock) FastForward(d time.Duration) time.Time {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.popDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return target
		}
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *TestClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// popDue removes and returns the earliest timer due at or before target.
func (c *TestClock) popDue(target time.Time) *testTimer {
	if len(c.timers) == 0 {
		return nil
	}

	sort.SliceStable(c.timers, func(i, j int) bool {
		if !c.timers[i].when.Equal(c.timers[j].when) {
			return c.timers[i].when.Before(c.timers[j].when)
		}
		return c.timers[i].seq < c.timers[j].seq
	})

	first := c.timers[0]
	if first.when.After(target) {
		return nil
	}
	c.timers = c.timers[1:]
	first.done = true
	return first
}

func (t *testTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	for idx, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:idx], c.timers[idx+1:]...)
			break
		}
	}
	return true
}
