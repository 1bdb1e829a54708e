package librarian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hasura/go-graphql-client"

	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/util"
)

const (
	graphqlPath = "/api/graphql"
	streamPath  = "/api/stream"

	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the default number of retries for failed requests
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the default delay between retries
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultRateLimit is the default minimum time between write requests
	DefaultRateLimit = 100 * time.Millisecond
	// DefaultBurst is the default burst size for rate limiting
	DefaultBurst = 10
)

// ClientConfig holds configuration for the librarian API client
type ClientConfig struct {
	// BaseURL is the base URL of the media server
	BaseURL string
	// Timeout specifies a time limit for requests
	Timeout time.Duration
	// MaxRetries specifies the maximum number of retries for failed requests
	MaxRetries int
	// RetryDelay specifies the delay between retries
	RetryDelay time.Duration
	// RateLimit specifies the minimum time between requests
	RateLimit time.Duration
	// Burst specifies the burst size for rate limiting
	Burst int
}

// DefaultClientConfig returns the default configuration for the client
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:    baseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		RateLimit:  DefaultRateLimit,
		Burst:      DefaultBurst,
	}
}

// headerAddingTransport is an http.RoundTripper that adds the required
// headers for authenticating with the media server.
type headerAddingTransport struct {
	token string
	rt    http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface.
func (t *headerAddingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")
	return t.rt.RoundTrip(req)
}

// Client is a client for the media server's query/mutation API
type Client struct {
	baseURL     string
	graphqlURL  string
	authToken   string
	httpClient  *http.Client
	gqlClient   *graphql.Client
	logger      *logger.Logger
	rateLimiter *util.RateLimiter
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new librarian client with default configuration
func NewClient(baseURL, token string, log *logger.Logger) *Client {
	return NewClientWithConfig(DefaultClientConfig(baseURL), token, log)
}

// NewClientWithConfig creates a new librarian client with custom configuration
func NewClientWithConfig(cfg *ClientConfig, token string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Get()
	}
	log = log.With(map[string]interface{}{
		"component": "librarian_client",
	})

	authClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &headerAddingTransport{
			token: token,
			rt:    http.DefaultTransport,
		},
	}

	graphqlURL := cfg.BaseURL + graphqlPath

	return &Client{
		baseURL:     cfg.BaseURL,
		graphqlURL:  graphqlURL,
		authToken:   token,
		httpClient:  authClient,
		gqlClient:   graphql.NewClient(graphqlURL, authClient),
		logger:      log,
		rateLimiter: util.NewRateLimiter(cfg.RateLimit, cfg.Burst),
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}
}

// StreamURL returns a directly playable URL for the given media file.
// The endpoint behind it is HTTP range-request-capable.
func (c *Client) StreamURL(mediaFileID string) string {
	return c.baseURL + streamPath + "/" + url.PathEscape(mediaFileID) + "?token=" + url.QueryEscape(c.authToken)
}

// Query executes a structured GraphQL query via the hasura client
func (c *Client) Query(ctx context.Context, q interface{}, variables map[string]interface{}) error {
	if err := c.gqlClient.Query(ctx, q, variables); err != nil {
		return fmt.Errorf("graphql query failed: %w", err)
	}
	return nil
}

// GraphQLMutation executes a raw GraphQL mutation with retry and rate
// limiting, unmarshalling the data payload into result.
func (c *Client) GraphQLMutation(ctx context.Context, mutation string, variables map[string]interface{}, result interface{}) error {
	return c.executeGraphQL(ctx, mutation, variables, result)
}

// GraphQLQuery executes a raw GraphQL query, unmarshalling the data payload
// into result.
func (c *Client) GraphQLQuery(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	return c.executeGraphQL(ctx, query, variables, result)
}

func (c *Client) executeGraphQL(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	if variables == nil {
		variables = make(map[string]interface{})
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		reqBody, err := json.Marshal(map[string]interface{}{
			"query":     query,
			"variables": variables,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewBuffer(reqBody))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			c.logger.Error("GraphQL request failed", map[string]interface{}{
				"error":   lastErr.Error(),
				"attempt": attempt + 1,
			})
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			c.logger.Error("GraphQL request returned HTTP error", map[string]interface{}{
				"status":  resp.StatusCode,
				"attempt": attempt + 1,
			})
			continue
		}

		var gqlResp struct {
			Data   json.RawMessage `json:"data"`
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors,omitempty"`
		}
		if err := json.Unmarshal(body, &gqlResp); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}

		if len(gqlResp.Errors) > 0 {
			lastErr = fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
			c.logger.Error("GraphQL operation failed", map[string]interface{}{
				"error":   lastErr.Error(),
				"attempt": attempt + 1,
			})
			continue
		}

		if result == nil {
			return nil
		}
		if len(gqlResp.Data) == 0 {
			lastErr = fmt.Errorf("empty data in GraphQL response")
			continue
		}
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal GraphQL data: %w", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
