package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/models"
)

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month, wrapping December into January.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Title renders the month as 2024年5月.
func (m Month) Title() string {
	return fmt.Sprintf("%d年%d月", m.Year, int(m.Month))
}

func (m Month) days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// eventsByDay maps a site-local date key to the first item starting that day.
func eventsByDay(items []models.ContentItem) map[string]models.ContentItem {
	byDay := make(map[string]models.ContentItem)
	for _, item := range items {
		if item.EventStart == nil {
			continue
		}
		key := item.EventStart.DateKey()
		if _, taken := byDay[key]; !taken {
			byDay[key] = item
		}
	}
	return byDay
}

// RenderCalendar renders the grid cells of a Sunday-first month calendar.
// today is a site-local date key (YYYY-MM-DD).
func RenderCalendar(m Month, today string, items []models.ContentItem) string {
	var sb strings.Builder
	for _, name := range weekdayNames {
		sb.WriteString(`<div class="calendar-day-header">` + name + `</div>`)
	}

	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	days := m.days()
	cells := lead + days
	if rem := cells % 7; rem != 0 {
		cells += 7 - rem
	}

	byDay := eventsByDay(items)

	for i := 0; i < cells; i++ {
		day := i - lead + 1
		if day < 1 || day > days {
			sb.WriteString(`<div class="calendar-day other-month"></div>`)
			continue
		}

		key := fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), day)
		classes := []string{"calendar-day"}
		if key == today {
			classes = append(classes, "today")
		}
		item, hasEvent := byDay[key]
		if hasEvent {
			classes = append(classes, "has-event")
		}

		sb.WriteString(`<div class="` + strings.Join(classes, " ") + `">`)
		sb.WriteString(fmt.Sprintf(`<span class="calendar-day-number">%d</span>`, day))
		if hasEvent {
			sb.WriteString(eventLabel(item))
		}
		sb.WriteString(`</div>`)
	}
	return sb.String()
}

func eventLabel(item models.ContentItem) string {
	title := Escape(item.Title)
	if item.GenerateArticlePage {
		return fmt.Sprintf(`<div class="calendar-day-event" onclick="event.stopPropagation(); window.location.href='%s'" title="%s">%s</div>`,
			item.PagePath(), title, title)
	}
	return fmt.Sprintf(`<div class="calendar-day-event calendar-day-event-nolink" title="%s">%s</div>`, title, title)
}
