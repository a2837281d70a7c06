package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/github"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/pages"
	"github.com/go-playground/assert/v2"
)

type fakeStore struct {
	items          []models.ContentItem
	attachments    map[models.ID][]models.Attachment
	listErr        error
	attachmentsErr error
}

func (f *fakeStore) ListPublished(ctx context.Context) ([]models.ContentItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.ContentItem
	for _, item := range f.items {
		if item.Status == models.StatusPublished {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) GetItem(ctx context.Context, id models.ID) (*models.ContentItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			item := item
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAttachments(ctx context.Context, id models.ID) ([]models.Attachment, error) {
	return f.attachments[id], f.attachmentsErr
}

type fakeRepo struct {
	files    map[string]string
	messages []string
	reads    []string
	putErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: map[string]string{
		pages.DetailTemplatePath: "<h1>{{title}}</h1><!-- {{#if attachments}} --><ul><!-- {{#each attachments}} --><li></li><!-- {{/each}} --></ul><!-- {{/if attachments}} -->",
	}}
}

func (f *fakeRepo) GetFile(ctx context.Context, path string) (*models.RepoFile, error) {
	f.reads = append(f.reads, path)
	content, ok := f.files[path]
	if !ok {
		return nil, github.ErrNotFound
	}
	return &models.RepoFile{Path: path, Content: []byte(content), SHA: "sha"}, nil
}

func (f *fakeRepo) PutFile(ctx context.Context, path string, content []byte, message string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.files[path] = string(content)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeRepo) DeleteFile(ctx context.Context, path, message string) (bool, error) {
	f.messages = append(f.messages, message)
	if _, ok := f.files[path]; !ok {
		return false, nil
	}
	delete(f.files, path)
	return true, nil
}

func ts(raw string) *models.Timestamp {
	parsed, err := models.ParseTimestamp(raw)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func newPublisher(store *fakeStore, repo *fakeRepo) *Publisher {
	p := New(store, repo, "https://asahigaoka-nerima.tokyo")
	// 2024-05-31 15:30 UTC is already June 1st in the site zone
	p.now = func() time.Time { return time.Date(2024, 5, 31, 15, 30, 0, 0, time.UTC) }
	return p
}

func sampleStore() *fakeStore {
	return &fakeStore{items: []models.ContentItem{
		{ID: "1", Slug: "natsu", Title: "夏祭りのお知らせ", Status: models.StatusPublished, EventStart: ts("2024-06-15T17:00:00"),
			ShowInCalendar: true, ShowInNewsList: true, GenerateArticlePage: true},
		{ID: "2", Title: "回覧板", Status: models.StatusPublished, PublishedAt: ts("2024-05-20T09:00:00+09:00"), ShowInNewsList: true},
		{ID: "3", Title: "下書き", Status: models.StatusDraft},
	}}
}

func TestToday(t *testing.T) {
	p := newPublisher(&fakeStore{}, newFakeRepo())

	assert.Equal(t, "2024-06-01", p.Today().Format("2006-01-02"))

	day, err := ParseDay("2024-12-31")
	assert.Equal(t, nil, err)
	assert.Equal(t, time.December, day.Month())

	_, err = ParseDay("31/12/2024")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegenerateNewsPage(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)

	res, err := p.RegenerateNewsPage(context.Background(), p.Today())

	assert.Equal(t, nil, err)
	assert.Equal(t, NewsPageResult{Date: "2024-06-01", ArticlesCount: 2, CalendarArticles: 1, NewsListArticles: 2}, res)
	assert.Equal(t, []string{"Update news.html - 2024-06-01"}, repo.messages)

	page := repo.files[pages.NewsPagePath]
	assert.Equal(t, true, strings.Contains(page, "2024年6月"))
	assert.Equal(t, true, strings.Contains(page, "2024年7月"))
	assert.Equal(t, true, strings.Contains(page, `href="news/natsu.html"`))
	assert.Equal(t, false, strings.Contains(page, "下書き"))
}

func TestRegenerateNewsPageIsStable(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)
	ctx := context.Background()

	_, err := p.RegenerateNewsPage(ctx, p.Today())
	assert.Equal(t, nil, err)
	first := repo.files[pages.NewsPagePath]

	_, err = p.RegenerateNewsPage(ctx, p.Today())
	assert.Equal(t, nil, err)
	assert.Equal(t, first, repo.files[pages.NewsPagePath])
}

func TestRegenerateNewsPageStoreError(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(&fakeStore{listErr: apperr.Connectivity(errors.New("timeout"), "content store unreachable")}, repo)

	_, err := p.RegenerateNewsPage(context.Background(), p.Today())

	assert.Equal(t, apperr.KindConnectivity, apperr.KindOf(err))
	assert.Equal(t, 0, len(repo.messages))
}

func TestPublishArticle(t *testing.T) {
	store := sampleStore()
	store.attachments = map[models.ID][]models.Attachment{
		"1": {{FileName: "map.pdf", FileURL: "https://cdn.example/map.pdf", FileSize: 10}},
	}
	repo := newFakeRepo()
	p := newPublisher(store, repo)

	res, err := p.PublishArticle(context.Background(), "1", false)

	assert.Equal(t, nil, err)
	assert.Equal(t, "news/natsu.html", res.FilePath)
	assert.Equal(t, true, res.NewsPageUpdated)
	assert.Equal(t, []string{"Update news/natsu.html - 夏祭りのお知らせ", "Update news.html - 2024-06-01"}, repo.messages)
	assert.Equal(t, true, strings.HasPrefix(repo.files["news/natsu.html"], "<h1>夏祭りのお知らせ</h1><ul>"))
	assert.Equal(t, true, strings.Contains(repo.files["news/natsu.html"], "map.pdf"))
}

func TestPublishArticleTruncatesCommitTitle(t *testing.T) {
	title := strings.Repeat("長", 40)
	store := &fakeStore{items: []models.ContentItem{{ID: "8", Title: title, Status: models.StatusPublished}}}
	repo := newFakeRepo()
	p := newPublisher(store, repo)

	_, err := p.PublishArticle(context.Background(), "8", false)

	assert.Equal(t, nil, err)
	assert.Equal(t, "Update news/8.html - "+strings.Repeat("長", 30), repo.messages[0])
}

func TestPublishArticleRejectsDraft(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)

	_, err := p.PublishArticle(context.Background(), "3", false)

	e, ok := apperr.As(err)
	assert.Equal(t, true, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "Article is not published (status: draft). Only published articles can have detail pages.", e.Message)
	assert.Equal(t, 0, len(repo.reads))
	assert.Equal(t, 0, len(repo.messages))
}

func TestPublishArticleNotFound(t *testing.T) {
	p := newPublisher(sampleStore(), newFakeRepo())

	_, err := p.PublishArticle(context.Background(), "404", false)

	e, _ := apperr.As(err)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "Article not found: 404", e.Message)
}

func TestDeleteMissingPageStillRegenerates(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)

	// drafts can always be deleted
	res, err := p.PublishArticle(context.Background(), "3", true)

	assert.Equal(t, nil, err)
	assert.Equal(t, true, res.Deleted)
	assert.Equal(t, "news/3.html", res.FilePath)
	assert.Equal(t, true, res.NewsPageUpdated)
	assert.Equal(t, []string{"Delete news/3.html", "Update news.html - 2024-06-01"}, repo.messages)
}

func TestPublishArticleNewsPageFailure(t *testing.T) {
	store := sampleStore()
	store.attachmentsErr = errors.New("attachments unavailable")
	repo := newFakeRepo()
	p := newPublisher(store, repo)
	store.listErr = errors.New("list failed")

	res, err := p.PublishArticle(context.Background(), "1", false)

	assert.Equal(t, nil, err)
	assert.Equal(t, false, res.NewsPageUpdated)
	assert.Equal(t, true, strings.HasPrefix(repo.files["news/natsu.html"], "<h1>夏祭りのお知らせ</h1>"))
	assert.Equal(t, false, strings.Contains(repo.files["news/natsu.html"], "<ul>"))
}

func TestPublishArticleMissingTemplate(t *testing.T) {
	repo := newFakeRepo()
	delete(repo.files, pages.DetailTemplatePath)
	p := newPublisher(sampleStore(), repo)

	_, err := p.PublishArticle(context.Background(), "1", false)

	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestRenderWithoutPushing(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)

	html, res, err := p.RenderNewsPage(context.Background(), p.Today())
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, res.ArticlesCount)
	assert.Equal(t, true, strings.Contains(html, "夏祭りのお知らせ"))

	page, err := p.RenderArticle(context.Background(), "1")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(page, "<h1>夏祭りのお知らせ</h1>"))

	_, err = p.RenderArticle(context.Background(), "3")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Equal(t, 0, len(repo.messages))
}

func TestRenderPageBySlugOrID(t *testing.T) {
	repo := newFakeRepo()
	p := newPublisher(sampleStore(), repo)

	page, err := p.RenderPage(context.Background(), "natsu")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(page, "<h1>夏祭りのお知らせ</h1>"))

	page, err = p.RenderPage(context.Background(), "2")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(page, "<h1>回覧板</h1>"))

	_, err = p.RenderPage(context.Background(), "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, 0, len(repo.messages))
}
