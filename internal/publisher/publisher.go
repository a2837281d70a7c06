package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/github"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/pages"
)

// ContentStore reads published articles.
type ContentStore interface {
	ListPublished(ctx context.Context) ([]models.ContentItem, error)
	GetItem(ctx context.Context, id models.ID) (*models.ContentItem, error)
	ListAttachments(ctx context.Context, articleID models.ID) ([]models.Attachment, error)
}

// Repository stores the generated site files.
type Repository interface {
	GetFile(ctx context.Context, path string) (*models.RepoFile, error)
	PutFile(ctx context.Context, path string, content []byte, message string) error
	DeleteFile(ctx context.Context, path, message string) (bool, error)
}

// NewsPageResult summarises a list page run.
type NewsPageResult struct {
	Date             string `json:"date"`
	ArticlesCount    int    `json:"articles_count"`
	CalendarArticles int    `json:"calendar_articles"`
	NewsListArticles int    `json:"news_list_articles"`
}

// ArticleResult summarises a detail page run.
type ArticleResult struct {
	FilePath        string `json:"file_path"`
	Deleted         bool   `json:"-"`
	NewsPageUpdated bool   `json:"news_page_updated"`
}

// Publisher renders site pages from the content store and pushes them to
// the site repository.
type Publisher struct {
	store       ContentStore
	repo        Repository
	siteBaseURL string
	now         func() time.Time
}

func New(store ContentStore, repo Repository, siteBaseURL string) *Publisher {
	return &Publisher{
		store:       store,
		repo:        repo,
		siteBaseURL: siteBaseURL,
		now:         time.Now,
	}
}

// Today returns the current site-local date at midnight.
func (p *Publisher) Today() time.Time {
	t := p.now().In(models.SiteZone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, models.SiteZone)
}

// ParseDay reads a YYYY-MM-DD date in the site zone.
func ParseDay(s string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s, models.SiteZone)
	if err != nil {
		return time.Time{}, apperr.Validation("today must be a YYYY-MM-DD date")
	}
	return day, nil
}

// RenderNewsPage builds news.html for the given site-local day without
// pushing it.
func (p *Publisher) RenderNewsPage(ctx context.Context, today time.Time) (string, NewsPageResult, error) {
	items, err := p.store.ListPublished(ctx)
	if err != nil {
		return "", NewsPageResult{}, err
	}

	calendar, list := pages.Partition(items)
	result := NewsPageResult{
		Date:             today.Format("2006-01-02"),
		ArticlesCount:    len(items),
		CalendarArticles: len(calendar),
		NewsListArticles: len(list),
	}

	logger.Get().Info().
		Str("date", result.Date).
		Int("articles", len(items)).
		Int("calendar", len(calendar)).
		Int("list", len(list)).
		Msg("Rendering news page")

	html := pages.NewsPage{
		Today:         today,
		CalendarItems: calendar,
		ListItems:     list,
		GeneratedAt:   p.now(),
	}.Render()

	return html, result, nil
}

// RegenerateNewsPage rebuilds news.html for the given site-local day.
func (p *Publisher) RegenerateNewsPage(ctx context.Context, today time.Time) (NewsPageResult, error) {
	start := time.Now()

	html, result, err := p.RenderNewsPage(ctx, today)
	if err != nil {
		return NewsPageResult{}, err
	}

	if err := p.repo.PutFile(ctx, pages.NewsPagePath, []byte(html), "Update news.html - "+result.Date); err != nil {
		return NewsPageResult{}, err
	}

	logger.Get().Info().Str("date", result.Date).Dur("duration", time.Since(start)).Msg("News page updated")
	return result, nil
}

// PublishArticle writes or deletes the detail page of one article and then
// refreshes the list page. A failed refresh is only reported in the result.
func (p *Publisher) PublishArticle(ctx context.Context, id models.ID, remove bool) (ArticleResult, error) {
	item, err := p.store.GetItem(ctx, id)
	if err != nil {
		return ArticleResult{}, err
	}
	if item == nil {
		return ArticleResult{}, apperr.NotFound("Article not found: %s", id)
	}

	path := item.PagePath()
	result := ArticleResult{FilePath: path, Deleted: remove}

	if remove {
		existed, err := p.repo.DeleteFile(ctx, path, "Delete "+path)
		if err != nil {
			return ArticleResult{}, err
		}
		logger.Get().Info().Str("path", path).Bool("existed", existed).Msg("Detail page removed")
	} else {
		if err := p.writeDetailPage(ctx, *item); err != nil {
			return ArticleResult{}, err
		}
	}

	result.NewsPageUpdated = p.refreshNewsPage(ctx)
	return result, nil
}

// RenderArticle builds the detail page of a published article without
// pushing it.
func (p *Publisher) RenderArticle(ctx context.Context, id models.ID) (string, error) {
	item, err := p.store.GetItem(ctx, id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", apperr.NotFound("Article not found: %s", id)
	}
	return p.renderDetailPage(ctx, *item)
}

// RenderPage builds the detail page served at news/{stem}.html. The stem
// is matched against published slugs first, then taken as an id.
func (p *Publisher) RenderPage(ctx context.Context, stem string) (string, error) {
	items, err := p.store.ListPublished(ctx)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if item.Slug != "" && item.Slug == stem {
			return p.renderDetailPage(ctx, item)
		}
	}
	return p.RenderArticle(ctx, models.ID(stem))
}

func (p *Publisher) writeDetailPage(ctx context.Context, item models.ContentItem) error {
	html, err := p.renderDetailPage(ctx, item)
	if err != nil {
		return err
	}

	path := item.PagePath()
	message := fmt.Sprintf("Update %s - %s", path, models.TruncateRunes(item.Title, 30))
	return p.repo.PutFile(ctx, path, []byte(html), message)
}

func (p *Publisher) renderDetailPage(ctx context.Context, item models.ContentItem) (string, error) {
	if item.Status != models.StatusPublished {
		return "", apperr.Validation("Article is not published (status: %s). Only published articles can have detail pages.", item.Status)
	}

	attachments, err := p.store.ListAttachments(ctx, item.ID)
	if err != nil {
		logger.Get().Warn().Err(err).Str("article_id", item.ID.String()).Msg("Failed to fetch attachments")
		attachments = nil
	}

	tmpl, err := p.repo.GetFile(ctx, pages.DetailTemplatePath)
	if errors.Is(err, github.ErrNotFound) {
		return "", apperr.Configuration("Template not found: %s", pages.DetailTemplatePath)
	}
	if err != nil {
		return "", err
	}

	return pages.DetailPage{
		Item:        item,
		Attachments: attachments,
		SiteBaseURL: p.siteBaseURL,
	}.Render(string(tmpl.Content)), nil
}

func (p *Publisher) refreshNewsPage(ctx context.Context) bool {
	if _, err := p.RegenerateNewsPage(ctx, p.Today()); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to update news page")
		return false
	}
	return true
}
