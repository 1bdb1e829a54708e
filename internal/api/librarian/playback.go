package librarian

import (
	"context"
	"fmt"

	"github.com/Dastari/librarian/internal/models"
)

// StartPlaybackInput is the input for starting a new playback session
type StartPlaybackInput struct {
	ContentType     models.ContentType `json:"contentType"`
	ContentID       string             `json:"contentId"`
	ParentID        string             `json:"parentId,omitempty"`
	MediaFileID     string             `json:"mediaFileId"`
	CurrentPosition float64            `json:"currentPosition"`
	Duration        float64            `json:"duration"`
	IsPlaying       bool               `json:"isPlaying"`
	IsMuted         bool               `json:"isMuted"`
}

// PlaybackResult is the server's response to a playback mutation
type PlaybackResult struct {
	Success bool                    `json:"success"`
	Session *models.PlaybackSession `json:"session,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// StartPlayback replaces the server-side playback session with a new one
func (c *Client) StartPlayback(ctx context.Context, input StartPlaybackInput) (*PlaybackResult, error) {
	const mutation = `
		mutation StartPlayback($input: StartPlaybackInput!) {
			startPlayback(input: $input) {
				success
				error
				session {
					id
					contentType
					contentId
					parentId
					mediaFileId
					currentPosition
					duration
					isPlaying
					isMuted
				}
			}
		}`

	var resp struct {
		StartPlayback PlaybackResult `json:"startPlayback"`
	}
	err := c.GraphQLMutation(ctx, mutation, map[string]interface{}{
		"input": input,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("startPlayback failed: %w", err)
	}

	c.logger.Debug("Started playback session", map[string]interface{}{
		"content_id": input.ContentID,
		"success":    resp.StartPlayback.Success,
	})
	return &resp.StartPlayback, nil
}

// UpdatePlayback merges a partial state change into the server-side session
func (c *Client) UpdatePlayback(ctx context.Context, update models.PlaybackUpdate) (*PlaybackResult, error) {
	const mutation = `
		mutation UpdatePlayback($input: UpdatePlaybackInput!) {
			updatePlayback(input: $input) {
				success
				error
				session {
					id
					currentPosition
					duration
					isPlaying
					isMuted
				}
			}
		}`

	var resp struct {
		UpdatePlayback PlaybackResult `json:"updatePlayback"`
	}
	err := c.GraphQLMutation(ctx, mutation, map[string]interface{}{
		"input": update,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("updatePlayback failed: %w", err)
	}
	return &resp.UpdatePlayback, nil
}

// StopPlayback deletes the server-side playback session
func (c *Client) StopPlayback(ctx context.Context) (*PlaybackResult, error) {
	const mutation = `
		mutation StopPlayback {
			stopPlayback {
				success
				error
			}
		}`

	var resp struct {
		StopPlayback PlaybackResult `json:"stopPlayback"`
	}
	if err := c.GraphQLMutation(ctx, mutation, nil, &resp); err != nil {
		return nil, fmt.Errorf("stopPlayback failed: %w", err)
	}
	return &resp.StopPlayback, nil
}

// GetPlaybackSession fetches the current session, or nil if nothing is playing
func (c *Client) GetPlaybackSession(ctx context.Context) (*models.PlaybackSession, error) {
	const query = `
		query GetPlaybackSession {
			playbackSession {
				id
				contentType
				contentId
				parentId
				mediaFileId
				currentPosition
				duration
				isPlaying
				isMuted
			}
		}`

	var resp struct {
		PlaybackSession *models.PlaybackSession `json:"playbackSession"`
	}
	if err := c.GraphQLQuery(ctx, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("getPlaybackSession failed: %w", err)
	}
	return resp.PlaybackSession, nil
}
