package playback

import (
	"context"
	"sync"
	"time"

	"github.com/Dastari/librarian/internal/logger"
)

// scheduler drives periodic position syncs while a session is playing.
// The ticker goroutine is torn down and recreated whenever the session,
// pause state or interval changes so that a fresh session never inherits
// a half-elapsed tick.
type scheduler struct {
	// arm serializes whole stop-and-arm sequences. Rearm can race with
	// itself (element events and UI commands rearm from different
	// goroutines); without this an armed loop's cancel handle can be
	// overwritten mid-sequence, leaving the loop running forever.
	arm sync.Mutex

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	tick     func(ctx context.Context)
	log      *logger.Logger
}

func newScheduler(interval time.Duration, tick func(ctx context.Context), log *logger.Logger) *scheduler {
	return &scheduler{
		interval: interval,
		tick:     tick,
		log:      log,
	}
}

// SetInterval changes the tick interval. A running loop is rearmed so the
// new interval takes effect immediately.
func (s *scheduler) SetInterval(interval time.Duration) {
	s.arm.Lock()
	defer s.arm.Unlock()

	s.mu.Lock()
	if interval <= 0 || interval == s.interval {
		s.mu.Unlock()
		return
	}
	s.interval = interval
	running := s.cancel != nil
	s.mu.Unlock()

	s.log.Debug("Sync interval changed", map[string]interface{}{
		"interval": interval.String(),
	})
	if running {
		s.stop()
		s.armLoop()
	}
}

// Rearm stops any running loop and, when run is true, starts a new one.
// Call with run=false while paused, casting or between sessions.
func (s *scheduler) Rearm(run bool) {
	s.arm.Lock()
	defer s.arm.Unlock()

	s.stop()
	if run {
		s.armLoop()
	}
}

// armLoop starts the ticker goroutine. Callers hold s.arm.
func (s *scheduler) armLoop() {
	s.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	interval := s.interval
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the goroutine to exit
func (s *scheduler) Stop() {
	s.arm.Lock()
	defer s.arm.Unlock()
	s.stop()
}

func (s *scheduler) stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
