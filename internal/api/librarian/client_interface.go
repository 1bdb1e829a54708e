package librarian

import (
	"context"

	"github.com/Dastari/librarian/internal/models"
)

// PlaybackAPI is the interface for session persistence operations
type PlaybackAPI interface {
	StartPlayback(ctx context.Context, input StartPlaybackInput) (*PlaybackResult, error)
	UpdatePlayback(ctx context.Context, update models.PlaybackUpdate) (*PlaybackResult, error)
	StopPlayback(ctx context.Context) (*PlaybackResult, error)
	GetPlaybackSession(ctx context.Context) (*models.PlaybackSession, error)
}

// ContentAPI is the interface for content metadata fetches
type ContentAPI interface {
	GetShow(ctx context.Context, showID string) (*models.Show, error)
	GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error)
	GetAlbumWithTracks(ctx context.Context, albumID string) (*models.Album, error)
	GetAudiobookWithChapters(ctx context.Context, audiobookID string) (*models.Audiobook, error)
	GetMovie(ctx context.Context, movieID string) (*models.Movie, error)
}

// CastAPI is the interface for cast-device operations
type CastAPI interface {
	ListCastDevices(ctx context.Context) ([]models.CastDevice, error)
	DiscoverCastDevices(ctx context.Context, timeoutSeconds int) ([]models.CastDevice, error)
	CastMedia(ctx context.Context, input CastMediaInput) (*CastResult, error)
	CastPlay(ctx context.Context, sessionID string) (*CastResult, error)
	CastPause(ctx context.Context, sessionID string) (*CastResult, error)
	CastStop(ctx context.Context, sessionID string) (*CastResult, error)
	CastSeek(ctx context.Context, sessionID string, position float64) (*CastResult, error)
	CastSetVolume(ctx context.Context, sessionID string, volume float64) (*CastResult, error)
	CastSetMuted(ctx context.Context, sessionID string, muted bool) (*CastResult, error)
}

// StreamAPI resolves playable URLs for media files
type StreamAPI interface {
	StreamURL(mediaFileID string) string
}

// ConfigAPI reads server-side configuration values
type ConfigAPI interface {
	GetSyncIntervalSeconds(ctx context.Context) (int, error)
}
