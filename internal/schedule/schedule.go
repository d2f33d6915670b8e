// Package schedule provides the delayed-callback abstraction used by the
// status simulator: a real-time implementation backed by a clockwork clock
// and a manual one that tests advance by hand.
package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending callback. Stop reports whether it prevented the call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// ClockScheduler fires callbacks from clock timers. Callbacks run on their own
// goroutine, so anything they touch must be safe for concurrent use.
type ClockScheduler struct {
	clock clockwork.Clock
}

func NewClockScheduler(clock clockwork.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClockScheduler{clock: clock}
}

func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

func (s *ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.clock.AfterFunc(d, f)
}
