// Package timing provides a scoped wall-clock timer for ad hoc measurement
// around any block of code. It is independent of training.
package timing

import "time"

// Timer measures elapsed wall-clock time from its start until it is stopped.
type Timer struct {
	start   time.Time
	end     time.Time
	stopped bool
}

// Start begins a new timer.
func Start() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since Start, or the frozen duration once the
// timer has been stopped.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.end.Sub(t.start)
	}
	return time.Since(t.start)
}

// Stop freezes the timer. Further Elapsed calls return the duration between
// Start and the first Stop. Stop is idempotent.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.end = time.Now()
		t.stopped = true
	}
	return t.end.Sub(t.start)
}

// Measure runs fn and returns how long it took.
func Measure(fn func()) time.Duration {
	t := Start()
	fn()
	return t.Stop()
}
