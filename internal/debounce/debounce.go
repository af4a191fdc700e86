// Package debounce coalesces bursts of change events into a single delayed
// call, with a suppressed state for batched resets.
package debounce

import (
	"sync"
	"time"
)

// State is the debouncer's position.
type State int

const (
	// Idle has no call scheduled.
	Idle State = iota
	// Pending has exactly one call scheduled.
	Pending
	// Suppressed ignores every Schedule until Resume.
	Suppressed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Debouncer runs fire after the most recent Schedule's delay has elapsed.
// Only the latest scheduled call can run; earlier ones are stopped, and a
// stop that loses the race with its timer is caught by a token check.
type Debouncer struct {
	clock Clock
	fire  func()

	mu    sync.Mutex
	state State
	timer Timer
	token uint64
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(d *Debouncer) { d.clock = c }
}

// New creates an idle Debouncer calling fire.
func New(fire func(), opts ...Option) *Debouncer {
	d := &Debouncer{clock: RealClock{}, fire: fire}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Schedule replaces any pending call with one after delay. A zero delay still
// goes through the timer so it supersedes, and is superseded by, the same
// slot. Returns false when suppressed.
func (d *Debouncer) Schedule(delay time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Suppressed {
		return false
	}
	d.stopLocked()
	d.token++
	token := d.token
	d.state = Pending
	d.timer = d.clock.AfterFunc(delay, func() { d.expire(token) })
	return true
}

// Cancel drops a pending call. Suppression is unaffected.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	if d.state == Pending {
		d.state = Idle
	}
}

// Suppress drops a pending call and ignores scheduling until Resume.
func (d *Debouncer) Suppress() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.state = Suppressed
}

// Resume leaves the suppressed state without firing. Callers that batched
// changes trigger the single follow-up call themselves.
func (d *Debouncer) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Suppressed {
		d.state = Idle
	}
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.token++
}

func (d *Debouncer) expire(token uint64) {
	d.mu.Lock()
	if token != d.token || d.state != Pending {
		d.mu.Unlock()
		return
	}
	d.state = Idle
	d.timer = nil
	d.mu.Unlock()
	d.fire()
}
