package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Dastari/librarian/internal/logger"
)

func TestSchedulerTicksWhileArmed(t *testing.T) {
	var ticks int32
	s := newScheduler(10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&ticks, 1)
	}, logger.Get())
	defer s.Stop()

	s.Rearm(true)
	time.Sleep(60 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&ticks), int32(1))
}

func TestSchedulerRearmFalseStopsTicking(t *testing.T) {
	var ticks int32
	s := newScheduler(10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&ticks, 1)
	}, logger.Get())
	defer s.Stop()

	s.Rearm(true)
	time.Sleep(35 * time.Millisecond)
	s.Rearm(false)

	after := atomic.LoadInt32(&ticks)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&ticks), "no ticks after disarm")
}

func TestSchedulerConcurrentRearmThenStopLeavesNoLoop(t *testing.T) {
	var ticks int32
	s := newScheduler(time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&ticks, 1)
	}, logger.Get())

	// Element events and UI commands rearm from different goroutines;
	// every loop armed here must still be reachable by Stop.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.Rearm(true)
			}
		}()
	}
	wg.Wait()
	s.Stop()

	after := atomic.LoadInt32(&ticks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&ticks), "no ticks after stop")
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := newScheduler(10*time.Millisecond, func(ctx context.Context) {}, logger.Get())
	s.Rearm(true)
	s.Stop()
	s.Stop()
	s.Rearm(false)
}

func TestSchedulerSetIntervalWhileStopped(t *testing.T) {
	var ticks int32
	s := newScheduler(time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&ticks, 1)
	}, logger.Get())
	defer s.Stop()

	// Interval change while stopped must not start the loop
	s.SetInterval(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&ticks))

	s.Rearm(true)
	time.Sleep(40 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&ticks), int32(0), "new interval applies on the next arm")
}
