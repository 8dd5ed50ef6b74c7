package jobs

import "time"

// TimerHandle is a cancellable scheduled callback.
type TimerHandle interface {
	// Cancel prevents the callback from firing if it has not already.
	// Safe to call more than once.
	Cancel()
}

// Scheduler schedules a single callback after a delay. The poller is
// written against this seam so tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// realScheduler is the production Scheduler backed by time.AfterFunc.
type realScheduler struct{}

// NewScheduler returns the wall-clock Scheduler.
func NewScheduler() Scheduler { return realScheduler{} }

type realTimer struct{ t *time.Timer }

func (r realScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return realTimer{t: time.AfterFunc(d, fn)}
}

func (r realTimer) Cancel() { r.t.Stop() }
