package contentstore

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/go-resty/resty/v2"
)

const (
	tableArticles      = "articles"
	tableAttachments   = "article_attachments"
	tableNotifications = "notification_history"
	tableConversations = "line_conversations"
)

// Timeouts per call class.
type Timeouts struct {
	Query        time.Duration // article and attachment reads
	History      time.Duration // notification history reads and writes
	Conversation time.Duration // chat log reads and writes
}

var DefaultTimeouts = Timeouts{
	Query:        30 * time.Second,
	History:      10 * time.Second,
	Conversation: 5 * time.Second,
}

// Client reads and appends rows through the content store's REST interface.
type Client struct {
	client   *resty.Client
	timeouts Timeouts
}

func NewClient(baseURL, apiKey string, timeouts Timeouts) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL+"/rest/v1").
			SetHeader("apikey", apiKey).
			SetHeader("Authorization", "Bearer "+apiKey).
			SetHeader("Content-Type", "application/json"),
		timeouts: timeouts,
	}
}

func (c *Client) query(ctx context.Context, timeout time.Duration, table string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get("/" + table)
	if err != nil {
		logger.Get().Error().Err(err).Str("table", table).Msg("Content store unreachable")
		return apperr.Connectivity(err, "content store unreachable")
	}
	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("table", table).
			Str("body", resp.String()).
			Msg("Content store query failed")
		return apperr.Upstream(resp.StatusCode(), resp.String(), "content store error: %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperr.Unexpected(err, "content store returned malformed rows")
	}
	return nil
}

func (c *Client) insert(ctx context.Context, timeout time.Duration, table string, row any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/" + table)
	if err != nil {
		return apperr.Connectivity(err, "content store unreachable")
	}
	if resp.IsError() {
		return apperr.Upstream(resp.StatusCode(), resp.String(), "content store insert error: %d", resp.StatusCode())
	}
	return nil
}

// ListPublished returns published, undeleted articles, event start first
// (undated ones leading), then newest published.
func (c *Client) ListPublished(ctx context.Context) ([]models.ContentItem, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("status", "eq."+models.StatusPublished)
	params.Set("deleted_at", "is.null")
	params.Set("order", "event_start_datetime.desc.nullsfirst,published_at.desc")

	var items []models.ContentItem
	if err := c.query(ctx, c.timeouts.Query, tableArticles, params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns the article with the given id, or nil when there is none.
func (c *Client) GetItem(ctx context.Context, id models.ID) (*models.ContentItem, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id.String())

	var items []models.ContentItem
	if err := c.query(ctx, c.timeouts.Query, tableArticles, params, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListAttachments returns an article's attachments in display order.
func (c *Client) ListAttachments(ctx context.Context, articleID models.ID) ([]models.Attachment, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("article_id", "eq."+articleID.String())
	params.Set("order", "display_order.asc")

	var attachments []models.Attachment
	if err := c.query(ctx, c.timeouts.Query, tableAttachments, params, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// HasNotification reports whether a notification of the given type was
// already recorded for the article.
func (c *Client) HasNotification(ctx context.Context, articleID models.ID, notificationType string) (bool, error) {
	params := url.Values{}
	params.Set("article_id", "eq."+articleID.String())
	params.Set("notification_type", "eq."+notificationType)
	params.Set("select", "id")

	var rows []map[string]any
	if err := c.query(ctx, c.timeouts.History, tableNotifications, params, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (c *Client) RecordNotification(ctx context.Context, rec models.NotificationRecord) error {
	return c.insert(ctx, c.timeouts.History, tableNotifications, rec)
}

// LatestConversationID returns the workflow conversation id of the user's
// most recent assistant turn, or "" when there is none.
func (c *Client) LatestConversationID(ctx context.Context, lineUserID string) (string, error) {
	params := url.Values{}
	params.Set("line_user_id", "eq."+lineUserID)
	params.Set("message_type", "eq."+models.MessageTypeAssistant)
	params.Set("select", "dify_conversation_id")
	params.Set("order", "created_at.desc")
	params.Set("limit", "1")

	var rows []struct {
		DifyConversationID *string `json:"dify_conversation_id"`
	}
	if err := c.query(ctx, c.timeouts.Conversation, tableConversations, params, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].DifyConversationID == nil {
		return "", nil
	}
	return *rows[0].DifyConversationID, nil
}

func (c *Client) SaveTurn(ctx context.Context, turn models.ConversationTurn) error {
	turn.Content = models.TruncateRunes(turn.Content, models.MaxTurnContent)
	return c.insert(ctx, c.timeouts.Conversation, tableConversations, turn)
}
