// Package resolver fetches display metadata (title, artwork, parent) for a
// playback session. Results are memoized per session id, since metadata is
// immutable for the session's lifetime.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/Dastari/librarian/internal/api/librarian"
	"github.com/Dastari/librarian/internal/cache"
	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
)

// DefaultCacheTTL is how long resolved metadata is kept
const DefaultCacheTTL = 1 * time.Hour

// Resolver resolves session display metadata from the remote API
type Resolver struct {
	api   librarian.ContentAPI
	cache cache.Cache[string, models.SessionMetadata]
	log   *logger.Logger
}

// New creates a resolver with a per-session metadata cache
func New(api librarian.ContentAPI, log *logger.Logger) *Resolver {
	componentLog := log.With(map[string]interface{}{
		"component": "content_resolver",
	})
	return &Resolver{
		api:   api,
		cache: cache.WithTTL(cache.NewMemoryCache[string, models.SessionMetadata](componentLog), DefaultCacheTTL),
		log:   componentLog,
	}
}

// Prime stores metadata for a session without a remote fetch. Used by the
// typed start helpers, which already hold the parent collection.
func (r *Resolver) Prime(sessionID string, metadata models.SessionMetadata) {
	if sessionID == "" {
		return
	}
	r.cache.Set(sessionID, metadata, 0)
}

// Invalidate drops cached metadata for a session
func (r *Resolver) Invalidate(sessionID string) {
	r.cache.Delete(sessionID)
}

// Resolve returns display metadata for the session, fetching from the
// remote API on a cache miss.
func (r *Resolver) Resolve(ctx context.Context, session *models.PlaybackSession) (models.SessionMetadata, error) {
	if session == nil {
		return models.SessionMetadata{}, fmt.Errorf("no session to resolve")
	}
	if meta, ok := r.cache.Get(session.ID); ok {
		return meta, nil
	}

	meta, err := r.fetch(ctx, session)
	if err != nil {
		return models.SessionMetadata{}, err
	}

	r.cache.Set(session.ID, meta, 0)
	return meta, nil
}

func (r *Resolver) fetch(ctx context.Context, session *models.PlaybackSession) (models.SessionMetadata, error) {
	switch session.ContentType {
	case models.ContentTypeMovie:
		movie, err := r.api.GetMovie(ctx, session.ContentID)
		if err != nil {
			return models.SessionMetadata{}, fmt.Errorf("failed to resolve movie: %w", err)
		}
		return models.SessionMetadata{
			Title:      movie.Title,
			ArtworkURL: movie.ArtworkURL,
		}, nil

	case models.ContentTypeEpisode:
		show, err := r.api.GetShow(ctx, session.ParentID)
		if err != nil {
			return models.SessionMetadata{}, fmt.Errorf("failed to resolve show: %w", err)
		}
		episodes, err := r.api.GetEpisodes(ctx, session.ParentID)
		if err != nil {
			return models.SessionMetadata{}, fmt.Errorf("failed to resolve episodes: %w", err)
		}
		meta := models.SessionMetadata{
			ParentTitle: show.Title,
			ArtworkURL:  show.ArtworkURL,
		}
		for _, e := range episodes {
			if e.ID == session.ContentID {
				meta.Title = e.Title
				meta.Subtitle = fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber)
				break
			}
		}
		return meta, nil

	case models.ContentTypeTrack:
		album, err := r.api.GetAlbumWithTracks(ctx, session.ParentID)
		if err != nil {
			return models.SessionMetadata{}, fmt.Errorf("failed to resolve album: %w", err)
		}
		meta := models.SessionMetadata{
			ParentTitle: album.Title,
			Subtitle:    album.Artist,
			ArtworkURL:  album.ArtworkURL,
		}
		for _, t := range album.Tracks {
			if t.ID == session.ContentID {
				meta.Title = t.Title
				if t.Artist != "" {
					meta.Subtitle = t.Artist
				}
				break
			}
		}
		return meta, nil

	case models.ContentTypeAudiobook:
		book, err := r.api.GetAudiobookWithChapters(ctx, session.ParentID)
		if err != nil {
			return models.SessionMetadata{}, fmt.Errorf("failed to resolve audiobook: %w", err)
		}
		meta := models.SessionMetadata{
			ParentTitle: book.Title,
			Subtitle:    book.Author,
			ArtworkURL:  book.ArtworkURL,
		}
		for _, ch := range book.Chapters {
			if ch.ID == session.ContentID {
				meta.Title = ch.Title
				break
			}
		}
		return meta, nil

	default:
		return models.SessionMetadata{}, fmt.Errorf("unknown content type: %s", session.ContentType)
	}
}
