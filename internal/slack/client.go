package slack

import (
	"bytes"
	"context"
	"fmt"
	"time"

	slackapi "github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// Client wraps the Slack Web API for one bot token.
type Client struct {
	api         *slackapi.Client
	rateLimiter *rate.Limiter
}

func NewClient(token string) *Client {
	// Rate limiter: 100 requests per minute, the Slack Tier 3 budget.
	limiter := rate.NewLimiter(rate.Every(time.Minute/100), 100)

	return &Client{
		api:         slackapi.New(token),
		rateLimiter: limiter,
	}
}

// GetFileData fetches file metadata by id. An ok:false API answer comes
// back as a slack.SlackErrorResponse in the error chain.
func (c *Client) GetFileData(ctx context.Context, fileID string) (*slackapi.File, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	file, _, _, err := c.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", fileID, err)
	}

	return file, nil
}

// GetImageData downloads raw bytes from a Slack content URL using the
// bot token for authorization.
func (c *Client) GetImageData(ctx context.Context, url string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var buf bytes.Buffer
	if err := c.api.GetFileContext(ctx, url, &buf); err != nil {
		return nil, fmt.Errorf("failed to download file content: %w", err)
	}

	return buf.Bytes(), nil
}

// ValidateAuth checks if the token is valid and returns basic auth info
func (c *Client) ValidateAuth(ctx context.Context) (*slackapi.AuthTestResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth validation failed: %w", err)
	}

	return resp, nil
}
