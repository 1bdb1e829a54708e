package librarian

import (
	"context"
	"fmt"

	"github.com/hasura/go-graphql-client"

	"github.com/Dastari/librarian/internal/models"
)

// GetShow fetches a show by id
func (c *Client) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	var q struct {
		Show struct {
			ID         string `graphql:"id"`
			Title      string `graphql:"title"`
			ArtworkURL string `graphql:"artworkUrl"`
		} `graphql:"show(id: $id)"`
	}

	err := c.Query(ctx, &q, map[string]interface{}{
		"id": graphql.ID(showID),
	})
	if err != nil {
		return nil, fmt.Errorf("getShow failed: %w", err)
	}

	return &models.Show{
		ID:         q.Show.ID,
		Title:      q.Show.Title,
		ArtworkURL: q.Show.ArtworkURL,
	}, nil
}

// GetEpisodes fetches all episodes of a show
func (c *Client) GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error) {
	var q struct {
		Episodes []struct {
			ID            string  `graphql:"id"`
			ShowID        string  `graphql:"showId"`
			Title         string  `graphql:"title"`
			SeasonNumber  int     `graphql:"seasonNumber"`
			EpisodeNumber int     `graphql:"episodeNumber"`
			Duration      float64 `graphql:"duration"`
			MediaFileID   string  `graphql:"mediaFileId"`
		} `graphql:"episodes(showId: $showId)"`
	}

	err := c.Query(ctx, &q, map[string]interface{}{
		"showId": graphql.ID(showID),
	})
	if err != nil {
		return nil, fmt.Errorf("getEpisodes failed: %w", err)
	}

	episodes := make([]models.Episode, 0, len(q.Episodes))
	for _, e := range q.Episodes {
		episodes = append(episodes, models.Episode{
			ID:            e.ID,
			ShowID:        e.ShowID,
			Title:         e.Title,
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Duration:      e.Duration,
			MediaFileID:   e.MediaFileID,
		})
	}

	c.logger.Debug("Fetched episodes", map[string]interface{}{
		"show_id": showID,
		"count":   len(episodes),
	})
	return episodes, nil
}

// GetAlbumWithTracks fetches an album together with its tracks
func (c *Client) GetAlbumWithTracks(ctx context.Context, albumID string) (*models.Album, error) {
	var q struct {
		Album struct {
			ID         string `graphql:"id"`
			Title      string `graphql:"title"`
			Artist     string `graphql:"artist"`
			ArtworkURL string `graphql:"artworkUrl"`
			Tracks     []struct {
				ID          string  `graphql:"id"`
				Title       string  `graphql:"title"`
				Artist      string  `graphql:"artist"`
				DiscNumber  int     `graphql:"discNumber"`
				TrackNumber int     `graphql:"trackNumber"`
				Duration    float64 `graphql:"duration"`
				MediaFileID string  `graphql:"mediaFileId"`
			} `graphql:"tracks"`
		} `graphql:"album(id: $id)"`
	}

	err := c.Query(ctx, &q, map[string]interface{}{
		"id": graphql.ID(albumID),
	})
	if err != nil {
		return nil, fmt.Errorf("getAlbumWithTracks failed: %w", err)
	}

	album := &models.Album{
		ID:         q.Album.ID,
		Title:      q.Album.Title,
		Artist:     q.Album.Artist,
		ArtworkURL: q.Album.ArtworkURL,
		Tracks:     make([]models.Track, 0, len(q.Album.Tracks)),
	}
	for _, t := range q.Album.Tracks {
		album.Tracks = append(album.Tracks, models.Track{
			ID:          t.ID,
			Title:       t.Title,
			Artist:      t.Artist,
			DiscNumber:  t.DiscNumber,
			TrackNumber: t.TrackNumber,
			Duration:    t.Duration,
			MediaFileID: t.MediaFileID,
			ArtworkURL:  q.Album.ArtworkURL,
		})
	}

	c.logger.Debug("Fetched album", map[string]interface{}{
		"album_id": albumID,
		"tracks":   len(album.Tracks),
	})
	return album, nil
}

// GetAudiobookWithChapters fetches an audiobook together with its chapters
func (c *Client) GetAudiobookWithChapters(ctx context.Context, audiobookID string) (*models.Audiobook, error) {
	var q struct {
		Audiobook struct {
			ID         string `graphql:"id"`
			Title      string `graphql:"title"`
			Author     string `graphql:"author"`
			ArtworkURL string `graphql:"artworkUrl"`
			Chapters   []struct {
				ID            string  `graphql:"id"`
				Title         string  `graphql:"title"`
				ChapterNumber int     `graphql:"chapterNumber"`
				Duration      float64 `graphql:"duration"`
				MediaFileID   string  `graphql:"mediaFileId"`
			} `graphql:"chapters"`
		} `graphql:"audiobook(id: $id)"`
	}

	err := c.Query(ctx, &q, map[string]interface{}{
		"id": graphql.ID(audiobookID),
	})
	if err != nil {
		return nil, fmt.Errorf("getAudiobookWithChapters failed: %w", err)
	}

	book := &models.Audiobook{
		ID:         q.Audiobook.ID,
		Title:      q.Audiobook.Title,
		Author:     q.Audiobook.Author,
		ArtworkURL: q.Audiobook.ArtworkURL,
		Chapters:   make([]models.Chapter, 0, len(q.Audiobook.Chapters)),
	}
	for _, ch := range q.Audiobook.Chapters {
		book.Chapters = append(book.Chapters, models.Chapter{
			ID:            ch.ID,
			Title:         ch.Title,
			ChapterNumber: ch.ChapterNumber,
			Duration:      ch.Duration,
			MediaFileID:   ch.MediaFileID,
		})
	}

	c.logger.Debug("Fetched audiobook", map[string]interface{}{
		"audiobook_id": audiobookID,
		"chapters":     len(book.Chapters),
	})
	return book, nil
}

// GetMovie fetches a movie by id
func (c *Client) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	var q struct {
		Movie struct {
			ID          string  `graphql:"id"`
			Title       string  `graphql:"title"`
			Duration    float64 `graphql:"duration"`
			MediaFileID string  `graphql:"mediaFileId"`
			ArtworkURL  string  `graphql:"artworkUrl"`
		} `graphql:"movie(id: $id)"`
	}

	err := c.Query(ctx, &q, map[string]interface{}{
		"id": graphql.ID(movieID),
	})
	if err != nil {
		return nil, fmt.Errorf("getMovie failed: %w", err)
	}

	return &models.Movie{
		ID:          q.Movie.ID,
		Title:       q.Movie.Title,
		Duration:    q.Movie.Duration,
		MediaFileID: q.Movie.MediaFileID,
		ArtworkURL:  q.Movie.ArtworkURL,
	}, nil
}

// GetSyncIntervalSeconds reads the configured position-sync interval from the
// server. Callers are expected to fall back to a local default on error.
func (c *Client) GetSyncIntervalSeconds(ctx context.Context) (int, error) {
	var q struct {
		ServerConfig struct {
			SyncIntervalSeconds int `graphql:"syncIntervalSeconds"`
		} `graphql:"serverConfig"`
	}

	if err := c.Query(ctx, &q, nil); err != nil {
		return 0, fmt.Errorf("getSyncInterval failed: %w", err)
	}
	if q.ServerConfig.SyncIntervalSeconds <= 0 {
		return 0, fmt.Errorf("server returned invalid sync interval: %d", q.ServerConfig.SyncIntervalSeconds)
	}
	return q.ServerConfig.SyncIntervalSeconds, nil
}
