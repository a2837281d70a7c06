package pages

import (
	"fmt"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/utils"
)

// DetailTemplatePath is the repository path of the shared detail template.
const DetailTemplatePath = "news/news_template.html"

const defaultCategory = "notice"

var categoryLabels = map[string]string{
	"notice":          "お知らせ",
	"event":           "イベント",
	"disaster_safety": "防災・防犯",
	"child_support":   "子育て支援",
	"shopping_info":   "商店街情報",
	"activity_report": "活動レポート",
}

// CategoryLabel returns the display name of a category.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return categoryLabels[defaultCategory]
}

// DetailPage is the input of one article page.
type DetailPage struct {
	Item        models.ContentItem
	Attachments []models.Attachment
	SiteBaseURL string
}

// URL is the public address of the page.
func (d DetailPage) URL() string {
	return strings.TrimRight(d.SiteBaseURL, "/") + "/" + d.Item.PagePath()
}

// Render fills tmpl with the article. Text fields are escaped, content is
// inserted as HTML.
func (d DetailPage) Render(tmpl string) string {
	item := d.Item

	category := item.Category
	if category == "" {
		category = defaultCategory
	}

	metaTitle := item.MetaTitle
	if metaTitle == "" {
		metaTitle = item.Title
	}
	metaDescription := item.MetaDescription
	if metaDescription == "" {
		metaDescription = Description(item.Content)
	}

	published := item.PublishedAt
	if published == nil {
		published = item.CreatedAt
	}
	var publishedRaw string
	if published != nil {
		publishedRaw = published.Raw
	}

	eventDateTime := FormatEventDateTime(item.EventStart, item.EventEnd)
	articleURL := d.URL()

	return NewTemplate(tmpl).
		Set("meta_title", Escape(metaTitle)).
		Set("meta_description", Escape(metaDescription)).
		Set("meta_keywords", Escape(item.MetaKeywords)).
		Set("featured_image_url", Escape(item.FeaturedImageURL)).
		Set("article_url", articleURL).
		Set("title", Escape(item.Title)).
		Set("category", Escape(category)).
		Set("category_label", Escape(CategoryLabel(category))).
		Set("published_at", Escape(publishedRaw)).
		Set("published_at_formatted", formatTimestamp(published)).
		Set("event_datetime_formatted", eventDateTime).
		Set("content", item.Content).
		Set("article_url_encoded", utils.PercentEncode(articleURL)).
		Set("title_encoded", utils.PercentEncode(item.Title)).
		Block("event_datetime", eventDateTime != "").
		Block("featured_image_url", item.FeaturedImageURL != "").
		Block("attachments", len(d.Attachments) > 0).
		BlockOr("prev_article", false, "<div></div>").
		Block("next_article", false).
		Each("attachments", RenderAttachments(d.Attachments)).
		Render()
}

// RenderAttachments renders the download list of an article.
func RenderAttachments(attachments []models.Attachment) string {
	parts := make([]string, 0, len(attachments))
	for _, att := range attachments {
		name := Escape(att.FileName)
		kind, icon := FileIcon(att.FileName)
		parts = append(parts, fmt.Sprintf(
			`<a href="%s" class="attachment-item" download="%s" target="_blank">`+
				`<div class="attachment-icon %s"><i class="ri-file-%s-line"></i></div>`+
				`<div class="attachment-info"><div class="attachment-name">%s</div><div class="attachment-size">%s</div></div>`+
				`<i class="ri-download-line attachment-download"></i></a>`,
			Escape(att.FileURL), name, kind, icon, name, FormatFileSize(att.FileSize)))
	}
	return strings.Join(parts, "\n")
}
