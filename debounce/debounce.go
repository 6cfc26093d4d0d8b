package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls. Each Trigger cancels the pending
// call, if any, and schedules a new one; only a call whose timer fires
// without being superseded is run.
type Debouncer struct {
	Wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

func New(wait time.Duration) *Debouncer {
	return &Debouncer{Wait: wait}
}

// Trigger schedules fn to run once Wait has elapsed with no further
// Trigger or Cancel. It reports false if the debouncer has been stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.Wait, func() {
		d.mu.Lock()
		// A timer that already fired can race a reschedule; the generation
		// tells them apart.
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})

	return true
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cancel()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Stop cancels the pending call and makes every later Trigger a no-op.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancel()
	d.stopped = true
}

func (d *Debouncer) cancel() bool {
	if d.timer == nil {
		return false
	}

	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}
