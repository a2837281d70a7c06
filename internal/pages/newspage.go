package pages

import (
	_ "embed"
	"time"

	"github.com/asahigaoka/sitehooks/internal/models"
)

// NewsPagePath is the repository path of the list page.
const NewsPagePath = "news.html"

//go:embed templates/news.html
var newsTemplate string

// NewsPage is the input of the list page.
type NewsPage struct {
	Today         time.Time // site-local date
	CalendarItems []models.ContentItem
	ListItems     []models.ContentItem
	GeneratedAt   time.Time
}

// Partition splits published items into calendar and list entries by their
// display flags, keeping the order.
func Partition(items []models.ContentItem) (calendar, list []models.ContentItem) {
	for _, item := range items {
		if item.ShowInCalendar {
			calendar = append(calendar, item)
		}
		if item.ShowInNewsList {
			list = append(list, item)
		}
	}
	return calendar, list
}

// Render fills the list page template. Output depends only on the fields of
// p, so equal input renders byte-identical pages.
func (p NewsPage) Render() string {
	current := MonthOf(p.Today)
	next := current.Next()
	today := p.Today.Format("2006-01-02")

	return NewTemplate(newsTemplate).
		Set("current_month_title", current.Title()).
		Set("current_month_calendar", RenderCalendar(current, today, p.CalendarItems)).
		Set("next_month_title", next.Title()).
		Set("next_month_calendar", RenderCalendar(next, today, p.CalendarItems)).
		Set("news_list", RenderNewsList(p.ListItems)).
		Set("generated_at", p.GeneratedAt.UTC().Format(time.RFC3339)).
		Render()
}
