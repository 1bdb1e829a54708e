package librarian

import (
	"context"
	"fmt"

	"github.com/Dastari/librarian/internal/models"
)

// castSessionFields is the selection set shared by all cast commands
const castSessionFields = `
				session {
					state
					position
					duration
					volume
					isMuted
				}`

// CastMediaInput is the input for starting playback on a cast receiver
type CastMediaInput struct {
	DeviceID    string             `json:"deviceId"`
	MediaFileID string             `json:"mediaFileId"`
	ContentID   string             `json:"contentId"`
	ContentType models.ContentType `json:"contentType"`
	Position    float64            `json:"position"`
}

// CastResult is the server's response to a cast mutation. Session carries
// only the fields the receiver echoed back.
type CastResult struct {
	Success   bool                      `json:"success"`
	SessionID string                    `json:"sessionId,omitempty"`
	Session   *models.CastSessionUpdate `json:"session,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// ListCastDevices returns the last known list of cast receivers
func (c *Client) ListCastDevices(ctx context.Context) ([]models.CastDevice, error) {
	const query = `
		query ListCastDevices {
			castDevices {
				id
				name
				address
				port
				model
				deviceType
				isFavorite
				isManual
				status
				lastSeenAt
			}
		}`

	var resp struct {
		CastDevices []models.CastDevice `json:"castDevices"`
	}
	if err := c.GraphQLQuery(ctx, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("listCastDevices failed: %w", err)
	}
	return resp.CastDevices, nil
}

// DiscoverCastDevices triggers a discovery scan and returns the fresh list
func (c *Client) DiscoverCastDevices(ctx context.Context, timeoutSeconds int) ([]models.CastDevice, error) {
	const mutation = `
		mutation DiscoverCastDevices($timeoutSeconds: Int!) {
			discoverCastDevices(timeoutSeconds: $timeoutSeconds) {
				id
				name
				address
				port
				model
				deviceType
				isFavorite
				isManual
				status
				lastSeenAt
			}
		}`

	var resp struct {
		DiscoverCastDevices []models.CastDevice `json:"discoverCastDevices"`
	}
	err := c.GraphQLMutation(ctx, mutation, map[string]interface{}{
		"timeoutSeconds": timeoutSeconds,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("discoverCastDevices failed: %w", err)
	}

	c.logger.Debug("Cast discovery finished", map[string]interface{}{
		"count": len(resp.DiscoverCastDevices),
	})
	return resp.DiscoverCastDevices, nil
}

// CastMedia requests a new cast session for the given media/device pair
func (c *Client) CastMedia(ctx context.Context, input CastMediaInput) (*CastResult, error) {
	const mutation = `
		mutation CastMedia($input: CastMediaInput!) {
			castMedia(input: $input) {
				success
				sessionId
				error` + castSessionFields + `
			}
		}`

	var resp struct {
		CastMedia CastResult `json:"castMedia"`
	}
	err := c.GraphQLMutation(ctx, mutation, map[string]interface{}{
		"input": input,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("castMedia failed: %w", err)
	}
	return &resp.CastMedia, nil
}

// CastPlay resumes playback on the active cast session
func (c *Client) CastPlay(ctx context.Context, sessionID string) (*CastResult, error) {
	return c.castCommand(ctx, "castPlay", sessionID, nil)
}

// CastPause pauses playback on the active cast session
func (c *Client) CastPause(ctx context.Context, sessionID string) (*CastResult, error) {
	return c.castCommand(ctx, "castPause", sessionID, nil)
}

// CastStop stops the active cast session
func (c *Client) CastStop(ctx context.Context, sessionID string) (*CastResult, error) {
	return c.castCommand(ctx, "castStop", sessionID, nil)
}

// CastSeek seeks the active cast session to the given position
func (c *Client) CastSeek(ctx context.Context, sessionID string, position float64) (*CastResult, error) {
	return c.castCommand(ctx, "castSeek", sessionID, map[string]interface{}{
		"position": position,
	})
}

// CastSetVolume sets the receiver volume (0.0-1.0)
func (c *Client) CastSetVolume(ctx context.Context, sessionID string, volume float64) (*CastResult, error) {
	return c.castCommand(ctx, "castSetVolume", sessionID, map[string]interface{}{
		"volume": volume,
	})
}

// CastSetMuted sets the receiver mute state
func (c *Client) CastSetMuted(ctx context.Context, sessionID string, muted bool) (*CastResult, error) {
	return c.castCommand(ctx, "castSetMuted", sessionID, map[string]interface{}{
		"muted": muted,
	})
}

// castCommand issues a single-session cast mutation. All cast commands share
// the same response shape.
func (c *Client) castCommand(ctx context.Context, field, sessionID string, extra map[string]interface{}) (*CastResult, error) {
	args := "sessionId: $sessionId"
	varDecls := "$sessionId: ID!"
	variables := map[string]interface{}{
		"sessionId": sessionID,
	}
	for k, v := range extra {
		variables[k] = v
		args += fmt.Sprintf(", %s: $%s", k, k)
		switch v.(type) {
		case float64:
			varDecls += fmt.Sprintf(", $%s: Float!", k)
		case bool:
			varDecls += fmt.Sprintf(", $%s: Boolean!", k)
		default:
			varDecls += fmt.Sprintf(", $%s: String!", k)
		}
	}

	mutation := fmt.Sprintf(`
		mutation CastCommand(%s) {
			%s(%s) {
				success
				error%s
			}
		}`, varDecls, field, args, castSessionFields)

	var resp map[string]CastResult
	if err := c.GraphQLMutation(ctx, mutation, variables, &resp); err != nil {
		return nil, fmt.Errorf("%s failed: %w", field, err)
	}

	result, ok := resp[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing result field in response", field)
	}
	return &result, nil
}
