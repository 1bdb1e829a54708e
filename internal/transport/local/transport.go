// Package local binds the single reused media element to the active
// session's stream and translates element events into session-state
// transitions.
package local

import (
	"sync"

	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
)

// MediaElement is the narrow control surface of the underlying playback
// element. Exactly one element is reused across sessions.
type MediaElement interface {
	// Load attaches a new stream URL to the element
	Load(url string)
	// Play starts playback. May fail under autoplay policy.
	Play() error
	// Pause pauses playback
	Pause()
	// Seek moves playback to the given position in seconds
	Seek(position float64)
	// SetMuted sets the element mute state
	SetMuted(muted bool)
	// SetVolume sets the element volume (0.0-1.0)
	SetVolume(volume float64)
	// Paused reports whether the element is currently paused
	Paused() bool
	// Unload pauses, clears the source and forces an unload, releasing the
	// element's network connection
	Unload()
}

// StreamResolver resolves a playable URL for a media file id
type StreamResolver interface {
	StreamURL(mediaFileID string) string
}

// SessionSink receives state transitions translated from element events.
// The transport never mutates the session directly.
type SessionSink interface {
	// PlayingChanged pushes an isPlaying transition into the session store
	PlayingChanged(isPlaying bool)
	// DurationLoaded pushes the stream duration once metadata is available
	DurationLoaded(duration float64)
	// Ended signals that the bound stream played to completion
	Ended()
}

// Transport owns the local media element for the active session
type Transport struct {
	element MediaElement
	streams StreamResolver
	sink    SessionSink
	log     *logger.Logger

	mu          sync.Mutex
	bound       bool
	mediaFileID string
	contentType models.ContentType
	position    float64
	duration    float64
	ready       bool
	failed      bool
	wantPlaying bool
	resumeAt    float64
}

// New creates a local transport around the given media element
func New(element MediaElement, streams StreamResolver, sink SessionSink, log *logger.Logger) *Transport {
	return &Transport{
		element: element,
		streams: streams,
		sink:    sink,
		log: log.With(map[string]interface{}{
			"component": "local_transport",
		}),
	}
}

// Bind attaches the element to the session's media file. Any previously
// bound stream is unloaded first so its network connection is released
// before the new one is attached.
func (t *Transport) Bind(session *models.PlaybackSession) {
	if session == nil || session.MediaFileID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound && t.mediaFileID == session.MediaFileID {
		// Same stream; nothing to rebind.
		return
	}

	if t.bound {
		t.element.Unload()
	}

	url := t.streams.StreamURL(session.MediaFileID)
	t.element.Load(url)
	t.element.SetMuted(session.IsMuted)

	t.bound = true
	t.mediaFileID = session.MediaFileID
	t.contentType = session.ContentType
	t.position = session.CurrentPosition
	t.duration = 0
	t.ready = false
	t.failed = false
	t.wantPlaying = session.IsPlaying
	t.resumeAt = session.CurrentPosition

	t.log.Debug("Bound media element", map[string]interface{}{
		"media_file_id": session.MediaFileID,
		"resume_at":     t.resumeAt,
	})
}

// Unbind releases the element's stream. Safe to call repeatedly; only the
// first call after a bind performs the unload.
func (t *Transport) Unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.bound {
		return
	}
	t.element.Unload()
	t.bound = false
	t.mediaFileID = ""
	t.ready = false
	t.wantPlaying = false
	t.position = 0
	t.duration = 0

	t.log.Debug("Unbound media element")
}

// Play requests playback on the element
func (t *Transport) Play() {
	t.mu.Lock()
	t.wantPlaying = true
	t.mu.Unlock()
	t.maybeAutoplay()
}

// Pause pauses the element
func (t *Transport) Pause() {
	t.mu.Lock()
	t.wantPlaying = false
	bound := t.bound
	t.mu.Unlock()
	if bound {
		t.element.Pause()
	}
}

// Seek moves the element to the given position. Before metadata is loaded
// the seek is deferred to the resume point instead, since seeking without a
// known duration is undefined.
func (t *Transport) Seek(position float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.bound {
		return
	}
	if !t.ready && t.duration == 0 {
		t.resumeAt = position
		return
	}
	t.element.Seek(position)
	t.position = position
}

// SetMuted sets the element mute state
func (t *Transport) SetMuted(muted bool) {
	t.mu.Lock()
	bound := t.bound
	t.mu.Unlock()
	if bound {
		t.element.SetMuted(muted)
	}
}

// SetVolume sets the element volume
func (t *Transport) SetVolume(volume float64) {
	t.mu.Lock()
	bound := t.bound
	t.mu.Unlock()
	if bound {
		t.element.SetVolume(volume)
	}
}

// Position returns the last observed playback position
func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Duration returns the stream duration, 0 until metadata has loaded
func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Ready reports whether the element can play the bound stream
func (t *Transport) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// Bound reports whether a stream is currently attached
func (t *Transport) Bound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound
}

// AcceptsKeyboard reports whether keyboard shortcuts should drive this
// transport: only while an expanded view is open and only for video content.
func (t *Transport) AcceptsKeyboard(expandedViewOpen bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !expandedViewOpen || !t.bound {
		return false
	}
	return !t.contentType.IsAudio()
}

// OnTimeUpdate handles the element's timeupdate event. The position is kept
// locally; syncing it to the server is the scheduler's decision.
func (t *Transport) OnTimeUpdate(position float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.bound {
		return
	}
	t.position = position
}

// OnLoadedMetadata handles the element's loadedmetadata event: records the
// duration and performs the deferred resume seek.
func (t *Transport) OnLoadedMetadata(duration float64) {
	t.mu.Lock()
	if !t.bound {
		t.mu.Unlock()
		return
	}
	t.duration = duration
	resumeAt := t.resumeAt
	t.resumeAt = 0
	if resumeAt > 0 {
		t.element.Seek(resumeAt)
		t.position = resumeAt
	}
	t.mu.Unlock()

	t.sink.DurationLoaded(duration)
}

// OnCanPlay handles the element's canplay event and gates autoplay
func (t *Transport) OnCanPlay() {
	t.mu.Lock()
	if !t.bound {
		t.mu.Unlock()
		return
	}
	t.ready = true
	t.failed = false
	t.mu.Unlock()

	t.maybeAutoplay()
}

// OnPlay handles the element's play event
func (t *Transport) OnPlay() {
	t.sink.PlayingChanged(true)
}

// OnPause handles the element's pause event
func (t *Transport) OnPause() {
	t.sink.PlayingChanged(false)
}

// OnEnded handles the element's ended event
func (t *Transport) OnEnded() {
	t.sink.Ended()
}

// OnError marks the content not-ready. The session is kept so the user can
// retry or switch transports.
func (t *Transport) OnError(err error) {
	t.mu.Lock()
	t.ready = false
	t.failed = true
	t.mu.Unlock()

	t.log.Error("Media element reported an error", map[string]interface{}{
		"error": err.Error(),
	})
}

// Failed reports whether the bound stream hit a playback error
func (t *Transport) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// maybeAutoplay attempts playback only when the session wants to play, the
// element reports ready, and the element is actually paused. Autoplay
// failures (e.g. policy) are swallowed.
func (t *Transport) maybeAutoplay() {
	t.mu.Lock()
	shouldPlay := t.bound && t.wantPlaying && t.ready && t.element.Paused()
	t.mu.Unlock()

	if !shouldPlay {
		return
	}
	if err := t.element.Play(); err != nil {
		t.log.Warn("Autoplay attempt rejected", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
