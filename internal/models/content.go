package models

import "time"

const (
	StatusPublished = "published"
	StatusDraft     = "draft"

	// NotificationTypeLine tags chat-broadcast rows in the notification history.
	NotificationTypeLine = "line"

	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
)

// ContentItem is an article row from the content store.
type ContentItem struct {
	ID                  ID         `json:"id"`
	Slug                string     `json:"slug"`
	Title               string     `json:"title"`
	Content             string     `json:"content"`
	Category            string     `json:"category"`
	Status              string     `json:"status"`
	FeaturedImageURL    string     `json:"featured_image_url"`
	MetaTitle           string     `json:"meta_title"`
	MetaDescription     string     `json:"meta_description"`
	MetaKeywords        string     `json:"meta_keywords"`
	PublishedAt         *Timestamp `json:"published_at"`
	CreatedAt           *Timestamp `json:"created_at"`
	EventStart          *Timestamp `json:"event_start_datetime"`
	EventEnd            *Timestamp `json:"event_end_datetime"`
	DeletedAt           *Timestamp `json:"deleted_at"`
	ShowInCalendar      bool       `json:"show_in_calendar"`
	ShowInNewsList      bool       `json:"show_in_news_list"`
	GenerateArticlePage bool       `json:"generate_article_page"`
	LinePublished       bool       `json:"line_published"`
	XPublished          bool       `json:"x_published"`
}

// PageSlug is the file name stem of the item's detail page.
func (c ContentItem) PageSlug() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.ID.String()
}

// PagePath is the repository path of the item's detail page.
func (c ContentItem) PagePath() string {
	return "news/" + c.PageSlug() + ".html"
}

// ListDate picks the date shown for the item in the news list.
func (c ContentItem) ListDate() *Timestamp {
	switch {
	case c.EventStart != nil:
		return c.EventStart
	case c.PublishedAt != nil:
		return c.PublishedAt
	default:
		return c.CreatedAt
	}
}

// Attachment is a file attached to an article.
type Attachment struct {
	ID           ID     `json:"id"`
	ArticleID    ID     `json:"article_id"`
	FileName     string `json:"file_name"`
	FileURL      string `json:"file_url"`
	FileSize     int64  `json:"file_size"`
	DisplayOrder int    `json:"display_order"`
}

// NotificationRecord marks an article as already broadcast on a channel.
type NotificationRecord struct {
	ArticleID        ID     `json:"article_id"`
	NotificationType string `json:"notification_type"`
	MessageHash      string `json:"message_hash"`
	ResponseData     any    `json:"response_data"`
}

// ConversationTurn is one message of a chat thread.
type ConversationTurn struct {
	LineUserID         string `json:"line_user_id"`
	MessageType        string `json:"message_type"`
	Content            string `json:"content"`
	DifyConversationID string `json:"dify_conversation_id,omitempty"`
	ResponseTimeMs     *int64 `json:"response_time_ms,omitempty"`
	IsFallback         bool   `json:"is_fallback"`
}

// RepoFile is a file in the site repository.
type RepoFile struct {
	Path    string
	Content []byte
	SHA     string
}

// MaxTurnContent caps the stored length of a conversation turn, in runes.
const MaxTurnContent = 10000

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Elapsed returns the milliseconds since start, as stored in response_time_ms.
func Elapsed(start time.Time) *int64 {
	ms := time.Since(start).Milliseconds()
	return &ms
}
