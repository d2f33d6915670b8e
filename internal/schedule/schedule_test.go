package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func TestManualScheduler_firesInOrder(t *testing.T) {
	s := NewManualScheduler(epoch)

	var fired []string
	s.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	s.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	s.AfterFunc(2*time.Second, func() { fired = append(fired, "c") })

	s.Advance(999 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, 3, s.Pending())

	s.Advance(time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)

	s.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, epoch.Add(6*time.Second), s.Now())
	assert.Zero(t, s.Pending())
}

func TestManualScheduler_nowDuringCallback(t *testing.T) {
	s := NewManualScheduler(epoch)

	var seen time.Time
	s.AfterFunc(1500*time.Millisecond, func() { seen = s.Now() })
	s.Advance(10 * time.Second)

	assert.Equal(t, epoch.Add(1500*time.Millisecond), seen)
}

func TestManualScheduler_stop(t *testing.T) {
	s := NewManualScheduler(epoch)

	calls := 0
	keep := s.AfterFunc(time.Second, func() { calls++ })
	drop := s.AfterFunc(time.Second, func() { calls += 10 })

	require.True(t, drop.Stop())
	require.False(t, drop.Stop(), "second stop is a no-op")

	s.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.False(t, keep.Stop(), "fired timers cannot be stopped")
}

func TestManualScheduler_callbackSchedules(t *testing.T) {
	s := NewManualScheduler(epoch)

	var order []int
	s.AfterFunc(time.Second, func() {
		order = append(order, 1)
		s.AfterFunc(time.Second, func() { order = append(order, 2) })
	})

	s.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 2}, order)
}

func TestClockScheduler_fakeClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	s := NewClockScheduler(clock)
	assert.Equal(t, epoch, s.Now())

	var calls int32
	s.AfterFunc(time.Second, func() { atomic.AddInt32(&calls, 1) })
	stopped := s.AfterFunc(time.Second, func() { atomic.AddInt32(&calls, 100) })
	require.True(t, stopped.Stop())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
}

func TestNewClockScheduler_defaultsToRealClock(t *testing.T) {
	s := NewClockScheduler(nil)
	assert.WithinDuration(t, time.Now(), s.Now(), time.Second)
}
