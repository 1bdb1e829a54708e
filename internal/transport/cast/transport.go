// Package cast maintains the active remote cast session and issues
// play/pause/seek/volume commands to a receiver device instead of the local
// media element.
package cast

import (
	"context"
	"sync"

	"github.com/Dastari/librarian/internal/api/librarian"
	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
)

// Transport holds the discovered device list and at most one active
// CastSession per application instance.
type Transport struct {
	api              librarian.CastAPI
	log              *logger.Logger
	discoveryTimeout int

	mu          sync.RWMutex
	devices     []models.CastDevice
	session     *models.CastSession
	discovering bool
	lastError   string
}

// New creates a cast transport backed by the given API
func New(api librarian.CastAPI, discoveryTimeoutSeconds int, log *logger.Logger) *Transport {
	return &Transport{
		api:              api,
		discoveryTimeout: discoveryTimeoutSeconds,
		log: log.With(map[string]interface{}{
			"component": "cast_transport",
		}),
	}
}

// Devices returns a copy of the current device list
func (t *Transport) Devices() []models.CastDevice {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.CastDevice, len(t.devices))
	copy(out, t.devices)
	return out
}

// Discovering reports whether a discovery scan is in flight
func (t *Transport) Discovering() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.discovering
}

// LastError returns the readable error from the last failed cast command
func (t *Transport) LastError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastError
}

// ActiveSession returns a copy of the active cast session, or nil
func (t *Transport) ActiveSession() *models.CastSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.session == nil {
		return nil
	}
	session := *t.session
	return &session
}

// IsCasting reports whether the given media file is playing on a receiver
func (t *Transport) IsCasting(mediaFileID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session != nil && mediaFileID != "" && t.session.MediaFileID == mediaFileID
}

// Discover triggers a device-discovery scan. On success the device list is
// replaced; on failure the last known list is re-fetched so the UI never
// sticks in a stale "discovering" state.
func (t *Transport) Discover(ctx context.Context) error {
	t.mu.Lock()
	t.discovering = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.discovering = false
		t.mu.Unlock()
	}()

	devices, err := t.api.DiscoverCastDevices(ctx, t.discoveryTimeout)
	if err != nil {
		t.log.Warn("Discovery failed, falling back to last known device list", map[string]interface{}{
			"error": err.Error(),
		})
		known, listErr := t.api.ListCastDevices(ctx)
		if listErr != nil {
			return listErr
		}
		t.mu.Lock()
		t.devices = known
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.devices = devices
	t.mu.Unlock()

	t.log.Info("Cast discovery completed", map[string]interface{}{
		"devices": len(devices),
	})
	return nil
}

// CastMedia requests a new cast session for the given media/device pair.
// Any previous session is superseded.
func (t *Transport) CastMedia(ctx context.Context, input librarian.CastMediaInput) error {
	result, err := t.api.CastMedia(ctx, input)
	if err != nil {
		t.setLastError(err.Error())
		return err
	}
	if !result.Success {
		t.setLastError(result.Error)
		return &CommandError{Command: "castMedia", Message: result.Error}
	}

	session := &models.CastSession{
		ID:          result.SessionID,
		DeviceID:    input.DeviceID,
		MediaFileID: input.MediaFileID,
		ContentID:   input.ContentID,
		ContentType: input.ContentType,
		State:       models.PlayerStateBuffering,
		Position:    input.Position,
		Volume:      1.0,
	}
	if result.Session != nil {
		session.Merge(*result.Session)
	}

	t.mu.Lock()
	t.session = session
	t.lastError = ""
	t.mu.Unlock()

	t.log.Info("Cast session started", map[string]interface{}{
		"session_id": session.ID,
		"device_id":  session.DeviceID,
	})
	return nil
}

// Play resumes the receiver. No-op without an active session.
func (t *Transport) Play(ctx context.Context) bool {
	return t.command(ctx, "castPlay", t.api.CastPlay)
}

// Pause pauses the receiver. No-op without an active session.
func (t *Transport) Pause(ctx context.Context) bool {
	return t.command(ctx, "castPause", t.api.CastPause)
}

// Stop ends the cast session on the receiver and destroys the local
// CastSession. No-op without an active session.
func (t *Transport) Stop(ctx context.Context) bool {
	t.mu.RLock()
	session := t.session
	t.mu.RUnlock()
	if session == nil {
		return false
	}

	result, err := t.api.CastStop(ctx, session.ID)
	if err != nil {
		t.setLastError(err.Error())
		return false
	}
	if !result.Success {
		t.setLastError(result.Error)
		return false
	}

	t.mu.Lock()
	t.session = nil
	t.lastError = ""
	t.mu.Unlock()
	return true
}

// Seek moves the receiver to the given position. No-op without a session.
func (t *Transport) Seek(ctx context.Context, position float64) bool {
	return t.command(ctx, "castSeek", func(ctx context.Context, sessionID string) (*librarian.CastResult, error) {
		return t.api.CastSeek(ctx, sessionID, position)
	})
}

// SetVolume sets the receiver volume. No-op without a session.
func (t *Transport) SetVolume(ctx context.Context, volume float64) bool {
	return t.command(ctx, "castSetVolume", func(ctx context.Context, sessionID string) (*librarian.CastResult, error) {
		return t.api.CastSetVolume(ctx, sessionID, volume)
	})
}

// SetMuted sets the receiver mute state. No-op without a session.
func (t *Transport) SetMuted(ctx context.Context, muted bool) bool {
	return t.command(ctx, "castSetMuted", func(ctx context.Context, sessionID string) (*librarian.CastResult, error) {
		return t.api.CastSetMuted(ctx, sessionID, muted)
	})
}

// command issues a cast mutation against the active session and merges the
// receiver's partial echo into local state. The receiver may not echo every
// field, so the echo is merged, never swapped wholesale.
func (t *Transport) command(ctx context.Context, name string, call func(context.Context, string) (*librarian.CastResult, error)) bool {
	t.mu.RLock()
	session := t.session
	t.mu.RUnlock()
	if session == nil {
		return false
	}

	result, err := call(ctx, session.ID)
	if err != nil {
		t.setLastError(err.Error())
		t.log.Error("Cast command failed", map[string]interface{}{
			"command": name,
			"error":   err.Error(),
		})
		return false
	}
	if !result.Success {
		t.setLastError(result.Error)
		return false
	}

	t.mu.Lock()
	if t.session != nil && result.Session != nil {
		t.session.Merge(*result.Session)
	}
	t.lastError = ""
	t.mu.Unlock()
	return true
}

func (t *Transport) setLastError(msg string) {
	t.mu.Lock()
	t.lastError = msg
	t.mu.Unlock()
}

// CommandError is a cast command rejection with a readable message
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	if e.Message == "" {
		return e.Command + " failed"
	}
	return e.Command + " failed: " + e.Message
}
