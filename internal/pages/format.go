package pages

import (
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/models"
)

var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape makes text safe for element content and quoted attributes.
func Escape(s string) string {
	return escaper.Replace(s)
}

// FormatDate renders a site-local date as 2024年5月1日（水）.
func FormatDate(t time.Time) string {
	t = t.In(models.SiteZone)
	return fmt.Sprintf("%d年%d月%d日（%s）", t.Year(), int(t.Month()), t.Day(), weekdayNames[t.Weekday()])
}

// FormatDateTime is FormatDate followed by HH:MM.
func FormatDateTime(t time.Time) string {
	return FormatDate(t) + t.In(models.SiteZone).Format("15:04")
}

// FormatEventDateTime renders an event period. An end on the same day only
// adds its time.
func FormatEventDateTime(start, end *models.Timestamp) string {
	if start == nil {
		return ""
	}
	out := FormatDateTime(start.Time)
	if end == nil {
		return out
	}
	if start.DateKey() == end.DateKey() {
		return out + " 〜 " + end.Local().Format("15:04")
	}
	return out + " 〜 " + FormatDateTime(end.Time)
}

func formatTimestamp(ts *models.Timestamp) string {
	if ts == nil {
		return ""
	}
	return FormatDate(ts.Time)
}

// FormatFileSize renders a byte count with one decimal place above 1 KB.
func FormatFileSize(size int64) string {
	const unit = 1024
	switch {
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	case size < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(unit*unit*unit))
	}
}

type fileIcon struct {
	kind string
	icon string
}

var fileIcons = map[string]fileIcon{
	"pdf":  {"pdf", "pdf"},
	"doc":  {"doc", "word"},
	"docx": {"doc", "word"},
	"xls":  {"doc", "excel"},
	"xlsx": {"doc", "excel"},
	"ppt":  {"doc", "ppt"},
	"pptx": {"doc", "ppt"},
	"jpg":  {"image", "image"},
	"jpeg": {"image", "image"},
	"png":  {"image", "image"},
	"gif":  {"image", "image"},
	"webp": {"image", "image"},
}

// FileIcon picks the icon class pair for a file name by its extension.
func FileIcon(name string) (kind, icon string) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if fi, ok := fileIcons[ext]; ok {
		return fi.kind, fi.icon
	}
	return "other", "file"
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// PlainText removes HTML tags and normalizes whitespace.
func PlainText(input string) string {
	cleaned := htmlTagRegex.ReplaceAllString(input, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

const (
	descriptionLimit = 160
	descriptionCut   = 157
)

// Description derives a meta description from article HTML.
func Description(content string) string {
	text := PlainText(content)
	runes := []rune(text)
	if len(runes) > descriptionLimit {
		return string(runes[:descriptionCut]) + "..."
	}
	return text
}
