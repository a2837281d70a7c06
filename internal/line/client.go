package line

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/go-resty/resty/v2"
)

const (
	// MaxTextLength is the platform limit for one text message, in runes.
	MaxTextLength = 5000
	// MaxMessages is the platform limit of messages per reply.
	MaxMessages = 5
)

// TextMessage is a plain text message object.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewText(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// Client calls the messaging API with a channel access token.
type Client struct {
	client  *resty.Client
	timeout time.Duration
}

func NewClient(apiURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(apiURL, "/")).
			SetAuthToken(accessToken).
			SetHeader("Content-Type", "application/json"),
		timeout: timeout,
	}
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		logger.Get().Error().Err(err).Str("path", path).Msg("LINE API unreachable")
		return nil, apperr.Connectivity(err, "LINE API unreachable")
	}
	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("path", path).
			Str("body", resp.String()).
			Msg("LINE API error")
		return nil, apperr.Upstream(resp.StatusCode(), resp.String(), "LINE API error: %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// Broadcast sends text to every friend of the channel and returns the API's
// response body.
func (c *Client) Broadcast(ctx context.Context, text string) (map[string]any, error) {
	raw, err := c.post(ctx, "/v2/bot/message/broadcast", map[string]any{
		"messages": []TextMessage{NewText(text)},
	})
	if err != nil {
		return nil, err
	}
	return decodeBody(raw), nil
}

// Reply answers a webhook event. Long text is split with SplitText.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	chunks := SplitText(text)
	messages := make([]TextMessage, 0, len(chunks))
	for _, chunk := range chunks {
		messages = append(messages, NewText(chunk))
	}

	_, err := c.post(ctx, "/v2/bot/message/reply", map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	})
	return err
}

// SplitText cuts text into MaxTextLength-rune chunks and keeps at most
// MaxMessages of them.
func SplitText(text string) []string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes) && len(chunks) < MaxMessages; start += MaxTextLength {
		end := start + MaxTextLength
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// decodeBody returns the JSON object body, or an empty map for the empty
// body the broadcast endpoint answers with.
func decodeBody(raw []byte) map[string]any {
	out := map[string]any{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return out
}
