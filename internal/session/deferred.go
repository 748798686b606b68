package session

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Deferred runs at most one delayed call at a time. Scheduling replaces the
// pending call and Cancel drops it; a timer that fires after being replaced
// or cancelled does nothing.
//
// The callback runs with lock held, and Schedule and Cancel must be called
// with lock held too, so a callback never observes state from a newer
// schedule.
type Deferred struct {
	clock quartz.Clock
	lock  sync.Locker

	gen   uint64
	timer *quartz.Timer
}

// NewDeferred creates a Deferred whose callbacks run under lock.
func NewDeferred(clock quartz.Clock, lock sync.Locker) *Deferred {
	return &Deferred{clock: clock, lock: lock}
}

// Schedule arranges for fn to run after delay, replacing any pending call.
func (d *Deferred) Schedule(delay time.Duration, fn func()) {
	d.Cancel()
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() {
		d.lock.Lock()
		defer d.lock.Unlock()
		if gen != d.gen {
			return
		}
		d.timer = nil
		fn()
	})
}

// Cancel drops the pending call, if any.
func (d *Deferred) Cancel() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is scheduled and has not yet run.
func (d *Deferred) Pending() bool {
	return d.timer != nil
}
