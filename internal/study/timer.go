package study

import "time"

// AutoAdvanceDelay is how long a test answer stays on screen before the
// next question is shown.
const AutoAdvanceDelay = 3 * time.Second

// Cancel stops a scheduled callback. Calling it more than once is safe.
type Cancel func()

// Scheduler runs fn once after d unless cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
}

// ClockScheduler schedules callbacks on the wall clock.
type ClockScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (ClockScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
