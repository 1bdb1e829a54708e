package models

// ContentType identifies what kind of content a playback session refers to
type ContentType string

const (
	ContentTypeEpisode   ContentType = "EPISODE"
	ContentTypeMovie     ContentType = "MOVIE"
	ContentTypeTrack     ContentType = "TRACK"
	ContentTypeAudiobook ContentType = "AUDIOBOOK"
)

// IsAudio reports whether the content type is queue-based audio content
func (t ContentType) IsAudio() bool {
	return t == ContentTypeTrack || t == ContentTypeAudiobook
}

// PlaybackSession is the single authoritative "what is playing" record.
// It is server-persisted so playback can resume across devices.
type PlaybackSession struct {
	ID              string      `json:"id"`
	ContentType     ContentType `json:"contentType"`
	ContentID       string      `json:"contentId"`
	ParentID        string      `json:"parentId,omitempty"`
	MediaFileID     string      `json:"mediaFileId"`
	CurrentPosition float64     `json:"currentPosition"`
	Duration        float64     `json:"duration"`
	IsPlaying       bool        `json:"isPlaying"`
	IsMuted         bool        `json:"isMuted"`
}

// PlaybackUpdate is a partial state change merged into the session.
// Nil fields are left untouched.
type PlaybackUpdate struct {
	CurrentPosition *float64 `json:"currentPosition,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	IsPlaying       *bool    `json:"isPlaying,omitempty"`
	IsMuted         *bool    `json:"isMuted,omitempty"`
}

// QueueItem is one playable unit in an audio queue (track or chapter).
// Only items with a resolved MediaFileID are queue-eligible.
type QueueItem struct {
	ID          string  `json:"id"`
	MediaFileID string  `json:"mediaFileId"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist,omitempty"`
	Duration    float64 `json:"duration"`
	ArtworkURL  string  `json:"artworkUrl,omitempty"`
	// SourceID references the originating track or chapter record
	SourceID string `json:"sourceId"`
}

// RepeatMode controls queue wrap behavior
type RepeatMode string

const (
	RepeatOff RepeatMode = "OFF"
	RepeatAll RepeatMode = "ALL"
)

// AuthorityMode names which transport owns playback control
type AuthorityMode string

const (
	AuthorityLocal AuthorityMode = "LOCAL"
	AuthorityCast  AuthorityMode = "CAST"
)

// PlaybackAuthority records which transport currently owns hardware control
// of the session. Updated transactionally on cast start/stop rather than
// derived per read.
type PlaybackAuthority struct {
	Mode AuthorityMode `json:"mode"`
	// DeviceID is set when Mode is AuthorityCast
	DeviceID string `json:"deviceId,omitempty"`
}

// LocalAuthority returns the authority value for local playback
func LocalAuthority() PlaybackAuthority {
	return PlaybackAuthority{Mode: AuthorityLocal}
}

// CastAuthority returns the authority value for playback on the given device
func CastAuthority(deviceID string) PlaybackAuthority {
	return PlaybackAuthority{Mode: AuthorityCast, DeviceID: deviceID}
}

// SessionMetadata is display metadata resolved for a session
type SessionMetadata struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	ParentTitle string `json:"parentTitle,omitempty"`
	ArtworkURL  string `json:"artworkUrl,omitempty"`
}
