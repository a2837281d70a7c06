package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/go-resty/resty/v2"
)

// ChatClient talks to a chat app of the workflow service.
type ChatClient struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
}

type chatRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id"`
	User           string         `json:"user"`
}

// ChatReply is the answer of one chat exchange.
type ChatReply struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

func NewChatClient(endpoint, apiKey string, timeout time.Duration) *ChatClient {
	return &ChatClient{
		client:   resty.New(),
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
	}
}

// Send asks query on behalf of user, continuing conversationID when set.
func (c *ChatClient) Send(ctx context.Context, query, user, conversationID string) (ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Inputs:         map[string]any{},
			Query:          query,
			ResponseMode:   responseModeBlocking,
			ConversationID: conversationID,
			User:           user,
		}).
		Post(c.endpoint)
	if err != nil {
		return ChatReply{}, apperr.Connectivity(err, "chat service unreachable")
	}

	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Str("user", user).
			Msg("Chat service returned an error")
		return ChatReply{}, apperr.Upstream(resp.StatusCode(), resp.String(), "chat service error: %d", resp.StatusCode())
	}

	var reply ChatReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return ChatReply{}, apperr.Unexpected(err, "chat response is not JSON")
	}
	return reply, nil
}
