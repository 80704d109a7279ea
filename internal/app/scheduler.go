package app

import "time"

// Scheduler arms one-shot callbacks. The wall-clock implementation delegates
// to time.AfterFunc; tests substitute a manual queue for deterministic
// countdowns.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// WallScheduler is the production Scheduler.
type WallScheduler struct{}

func (WallScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
