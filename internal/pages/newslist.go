package pages

import (
	"strings"

	"github.com/asahigaoka/sitehooks/internal/models"
)

// MaxListItems caps the news list.
const MaxListItems = 30

const (
	emptyList        = `<div class="text-center text-gray-500 py-8">お知らせはありません</div>`
	imagePlaceholder = `<div class="news-item-image bg-gray-200 flex items-center justify-center text-gray-400 text-sm">画像なし</div>`
	lineIcon         = `<div class="news-item-icon line" title="LINEで配信済み"><i class="ri-line-fill text-xs"></i></div>`
	xIcon            = `<div class="news-item-icon x" title="Xで投稿済み"><i class="ri-twitter-x-line text-xs"></i></div>`
)

// RenderNewsList renders the first MaxListItems items in the given order.
func RenderNewsList(items []models.ContentItem) string {
	if len(items) == 0 {
		return emptyList
	}
	if len(items) > MaxListItems {
		items = items[:MaxListItems]
	}

	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(newsItem(item))
	}
	return sb.String()
}

func newsItem(item models.ContentItem) string {
	title := Escape(item.Title)

	image := imagePlaceholder
	if item.FeaturedImageURL != "" {
		image = `<img src="` + Escape(item.FeaturedImageURL) + `" alt="` + title + `" class="news-item-image">`
	}

	var icons string
	if item.LinePublished {
		icons += lineIcon
	}
	if item.XPublished {
		icons += xIcon
	}

	body := image +
		`<div class="news-item-content">` +
		`<div class="news-item-date">` + formatTimestamp(item.ListDate()) + `</div>` +
		`<div class="news-item-title">` + title + `</div>` +
		`<div class="news-item-icons">` + icons + `</div>` +
		`</div>`

	if item.GenerateArticlePage {
		return `<a href="` + item.PagePath() + `" class="news-item">` + body + `</a>`
	}
	return `<div class="news-item news-item-nolink">` + body + `</div>`
}
