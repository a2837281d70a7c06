package xpost

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/go-resty/resty/v2"
)

const userAgent = "asahigaoka-x-post/1.0"

// Client posts short messages to the microblog API.
type Client struct {
	client   *resty.Client
	signer   *Signer
	endpoint string
	timeout  time.Duration
}

func NewClient(endpoint string, creds Credentials, timeout time.Duration) *Client {
	return &Client{
		client:   resty.New().SetHeader("User-Agent", userAgent),
		signer:   NewSigner(creds),
		endpoint: endpoint,
		timeout:  timeout,
	}
}

// Post publishes text and returns the API's response body.
func (c *Client) Post(ctx context.Context, text string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", c.signer.Authorization(http.MethodPost, c.endpoint)).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(c.endpoint)
	if err != nil {
		logger.Get().Error().Err(err).Msg("X API unreachable")
		return nil, apperr.Connectivity(err, "X API unreachable")
	}
	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Msg("X API error")
		return nil, apperr.Upstream(resp.StatusCode(), resp.String(), "X API error: %d", resp.StatusCode())
	}

	out := map[string]any{}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperr.Unexpected(err, "X API returned malformed JSON")
	}
	return out, nil
}
