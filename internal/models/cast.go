package models

import "time"

// PlayerState is the state of a remote cast receiver
type PlayerState string

const (
	PlayerStateIdle      PlayerState = "IDLE"
	PlayerStateBuffering PlayerState = "BUFFERING"
	PlayerStatePlaying   PlayerState = "PLAYING"
	PlayerStatePaused    PlayerState = "PAUSED"
)

// CastDevice is a discovered or manually-added cast receiver
type CastDevice struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Port       int       `json:"port"`
	Model      string    `json:"model,omitempty"`
	DeviceType string    `json:"deviceType,omitempty"`
	IsFavorite bool      `json:"isFavorite"`
	IsManual   bool      `json:"isManual"`
	Status     string    `json:"status"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// CastSession mirrors PlaybackSession for a remote receiver.
// At most one is active per application instance.
type CastSession struct {
	ID          string      `json:"id"`
	DeviceID    string      `json:"deviceId"`
	MediaFileID string      `json:"mediaFileId"`
	ContentID   string      `json:"contentId"`
	ContentType ContentType `json:"contentType"`
	State       PlayerState `json:"state"`
	Position    float64     `json:"position"`
	Duration    float64     `json:"duration"`
	Volume      float64     `json:"volume"`
	IsMuted     bool        `json:"isMuted"`
}

// CastSessionUpdate is a partial session echo from the receiver.
// The receiver may not echo every field, so nil fields are kept as-is.
type CastSessionUpdate struct {
	State    *PlayerState `json:"state,omitempty"`
	Position *float64     `json:"position,omitempty"`
	Duration *float64     `json:"duration,omitempty"`
	Volume   *float64     `json:"volume,omitempty"`
	IsMuted  *bool        `json:"isMuted,omitempty"`
}

// Merge applies the non-nil fields of the update to the session
func (s *CastSession) Merge(u CastSessionUpdate) {
	if u.State != nil {
		s.State = *u.State
	}
	if u.Position != nil {
		s.Position = *u.Position
	}
	if u.Duration != nil {
		s.Duration = *u.Duration
	}
	if u.Volume != nil {
		s.Volume = *u.Volume
	}
	if u.IsMuted != nil {
		s.IsMuted = *u.IsMuted
	}
}
