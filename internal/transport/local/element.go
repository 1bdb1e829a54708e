package local

import (
	"sync"
	"time"

	"github.com/Dastari/librarian/internal/logger"
)

// ElementEvents receives the events a media element emits. *Transport
// implements it.
type ElementEvents interface {
	OnTimeUpdate(position float64)
	OnLoadedMetadata(duration float64)
	OnCanPlay()
	OnPlay()
	OnPause()
	OnEnded()
	OnError(err error)
}

// ClockElement is a headless MediaElement. It renders nothing; position
// advances with the wall clock while playing. Used when the process runs
// without an embedding player, so position sync and session transitions
// behave as they would against a real element.
type ClockElement struct {
	log    *logger.Logger
	events ElementEvents

	mu       sync.Mutex
	url      string
	loaded   bool
	paused   bool
	position float64
	duration float64
	volume   float64
	muted    bool
	stop     chan struct{}
}

// NewClockElement creates a headless media element
func NewClockElement(log *logger.Logger) *ClockElement {
	return &ClockElement{
		log:    log.With(map[string]interface{}{"component": "clock_element"}),
		paused: true,
		volume: 1.0,
	}
}

// AttachEvents wires the event sink. Must be called before Load.
func (e *ClockElement) AttachEvents(events ElementEvents) {
	e.mu.Lock()
	e.events = events
	e.mu.Unlock()
}

// SetDuration tells the element how long the attached stream is. A real
// element reads this from stream metadata; the clock element has to be
// told. Zero means unknown and the element never ends on its own.
func (e *ClockElement) SetDuration(duration float64) {
	e.mu.Lock()
	e.duration = duration
	loaded := e.loaded
	events := e.events
	e.mu.Unlock()

	if loaded && events != nil && duration > 0 {
		go events.OnLoadedMetadata(duration)
	}
}

// Load attaches a stream URL. Metadata and readiness events fire
// asynchronously, as they would on a real element.
func (e *ClockElement) Load(url string) {
	e.mu.Lock()
	e.url = url
	e.loaded = true
	e.paused = true
	e.position = 0
	duration := e.duration
	events := e.events
	e.mu.Unlock()

	if events != nil {
		go func() {
			events.OnLoadedMetadata(duration)
			events.OnCanPlay()
		}()
	}
}

// Play starts the position clock
func (e *ClockElement) Play() error {
	e.mu.Lock()
	if !e.loaded || !e.paused {
		e.mu.Unlock()
		return nil
	}
	e.paused = false
	stop := make(chan struct{})
	e.stop = stop
	events := e.events
	e.mu.Unlock()

	if events != nil {
		go events.OnPlay()
	}
	go e.run(stop)
	return nil
}

// Pause stops the position clock
func (e *ClockElement) Pause() {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return
	}
	e.paused = true
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	events := e.events
	e.mu.Unlock()

	if events != nil {
		go events.OnPause()
	}
}

// Seek moves the clock
func (e *ClockElement) Seek(position float64) {
	e.mu.Lock()
	if position < 0 {
		position = 0
	}
	if e.duration > 0 && position > e.duration {
		position = e.duration
	}
	e.position = position
	events := e.events
	e.mu.Unlock()

	if events != nil {
		go events.OnTimeUpdate(position)
	}
}

// SetMuted records the mute state
func (e *ClockElement) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
}

// SetVolume records the volume
func (e *ClockElement) SetVolume(volume float64) {
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
}

// Paused reports whether the clock is stopped
func (e *ClockElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Unload stops the clock and clears the source
func (e *ClockElement) Unload() {
	e.mu.Lock()
	e.url = ""
	e.loaded = false
	e.paused = true
	e.position = 0
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.mu.Unlock()
}

func (e *ClockElement) run(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			e.mu.Lock()
			e.position += now.Sub(last).Seconds()
			last = now
			position := e.position
			ended := e.duration > 0 && position >= e.duration
			if ended {
				e.position = e.duration
				e.paused = true
				e.stop = nil
			}
			events := e.events
			e.mu.Unlock()

			if events == nil {
				continue
			}
			if ended {
				events.OnTimeUpdate(position)
				events.OnEnded()
				return
			}
			events.OnTimeUpdate(position)
		}
	}
}
