package pages

import (
	"strings"
	"testing"

	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/go-playground/assert/v2"
)

const detailTemplate = `<title>{{meta_title}}</title>
<meta name="description" content="{{meta_description}}">
<h1>{{title}}</h1><span class="{{category}}">{{category_label}}</span>
<time datetime="{{published_at}}">{{published_at_formatted}}</time>
<!-- {{#if event_datetime}} -->
<p class="event">{{event_datetime_formatted}}</p>
<!-- {{/if event_datetime}} -->
<!-- {{#if featured_image_url}} -->
<img src="{{featured_image_url}}">
<!-- {{/if featured_image_url}} -->
<article>{{content}}</article>
<!-- {{#if attachments}} -->
<div class="attachments">
<!-- {{#each attachments}} -->
<a href="{{file_url}}" class="attachment-item">{{file_name}}</a>
<!-- {{/each}} -->
</div>
<!-- {{/if attachments}} -->
<nav><!-- {{#if prev_article}} --><a href="{{prev_url}}">prev</a><!-- {{/if prev_article}} --><!-- {{#if next_article}} --><a href="{{next_url}}">next</a><!-- {{/if next_article}} --></nav>
<a href="https://x.com/share?url={{article_url_encoded}}&text={{title_encoded}}">share</a>`

func TestDetailPageRender(t *testing.T) {
	page := DetailPage{
		Item: models.ContentItem{
			ID:          "12",
			Title:       `Q&A "会"`,
			Content:     "<p>本文 {{not_a_token}}</p>",
			PublishedAt: ts(t, "2024-05-01T10:00:00+09:00"),
		},
		Attachments: []models.Attachment{
			{FileName: "案内.pdf", FileURL: "https://cdn.example/x.pdf", FileSize: 2048},
		},
		SiteBaseURL: "https://asahigaoka-nerima.tokyo",
	}

	out := page.Render(detailTemplate)

	assert.Equal(t, "https://asahigaoka-nerima.tokyo/news/12.html", page.URL())
	assert.Equal(t, true, strings.Contains(out, `<title>Q&amp;A &quot;会&quot;</title>`))
	assert.Equal(t, true, strings.Contains(out, `content="本文 {{not_a_token}}"`))
	assert.Equal(t, true, strings.Contains(out, `<span class="notice">お知らせ</span>`))
	assert.Equal(t, true, strings.Contains(out, `<time datetime="2024-05-01T10:00:00+09:00">2024年5月1日（水）</time>`))
	assert.Equal(t, true, strings.Contains(out, `<article><p>本文 {{not_a_token}}</p></article>`))
	assert.Equal(t, false, strings.Contains(out, `class="event"`))
	assert.Equal(t, false, strings.Contains(out, "<img"))
	assert.Equal(t, true, strings.Contains(out, `<div class="attachment-icon pdf"><i class="ri-file-pdf-line"></i></div>`))
	assert.Equal(t, true, strings.Contains(out, `<div class="attachment-size">2.0 KB</div>`))
	assert.Equal(t, false, strings.Contains(out, "{{file_url}}"))
	assert.Equal(t, true, strings.Contains(out, "<nav><div></div></nav>"))
	assert.Equal(t, true, strings.Contains(out,
		"url=https%3A%2F%2Fasahigaoka-nerima.tokyo%2Fnews%2F12.html&text=Q%26A%20%22%E4%BC%9A%22"))
	assert.Equal(t, false, strings.Contains(out, "<!-- {{"))
}

func TestDetailPageEventAndImage(t *testing.T) {
	page := DetailPage{
		Item: models.ContentItem{
			ID:               "13",
			Slug:             "bon-odori",
			Title:            "盆踊り",
			Category:         "event",
			MetaTitle:        "盆踊り大会 2024",
			FeaturedImageURL: "https://cdn.example/bon.jpg",
			EventStart:       ts(t, "2024-07-20T18:30:00"),
			EventEnd:         ts(t, "2024-07-20T20:00:00"),
			CreatedAt:        ts(t, "2024-06-01T09:00:00"),
		},
		SiteBaseURL: "https://asahigaoka-nerima.tokyo/",
	}

	out := page.Render(detailTemplate)

	assert.Equal(t, "https://asahigaoka-nerima.tokyo/news/bon-odori.html", page.URL())
	assert.Equal(t, true, strings.Contains(out, "<title>盆踊り大会 2024</title>"))
	assert.Equal(t, true, strings.Contains(out, `<span class="event">イベント</span>`))
	assert.Equal(t, true, strings.Contains(out, "\n<p class=\"event\">2024年7月20日（土）18:30 〜 20:00</p>\n"))
	assert.Equal(t, true, strings.Contains(out, `<img src="https://cdn.example/bon.jpg">`))
	assert.Equal(t, true, strings.Contains(out, "2024年6月1日（土）"))
	assert.Equal(t, false, strings.Contains(out, `class="attachments"`))
}

func TestCategoryLabelDefault(t *testing.T) {
	assert.Equal(t, "防災・防犯", CategoryLabel("disaster_safety"))
	assert.Equal(t, "お知らせ", CategoryLabel("unknown"))
}
