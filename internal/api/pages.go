package api

import (
	"encoding/json"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/publisher"
	"github.com/gofiber/fiber/v2"
)

type newsRequest struct {
	Today string `json:"today"`
}

type articleRequest struct {
	ArticleID models.ID `json:"article_id" validate:"required"`
	// ArticleData is sent by the CMS but the item is always re-read.
	ArticleData json.RawMessage `json:"article_data"`
	DeleteFlag  bool            `json:"delete_flag"`
}

// GenerateNews handles POST /api/generate/news
func (h *Handlers) GenerateNews(c *fiber.Ctx) error {
	var req newsRequest
	if err := decodeBody(c, &req, pageMessages, true); err != nil {
		return err
	}

	today := h.deps.Pages.Today()
	if s := strings.TrimSpace(req.Today); s != "" {
		day, err := publisher.ParseDay(s)
		if err != nil {
			return err
		}
		today = day
	}

	res, err := h.deps.Pages.RegenerateNewsPage(c.UserContext(), today)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "news.html updated successfully",
		"date":               res.Date,
		"articles_count":     res.ArticlesCount,
		"calendar_articles":  res.CalendarArticles,
		"news_list_articles": res.NewsListArticles,
	})
}

// GenerateArticle handles POST /api/generate/article
func (h *Handlers) GenerateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := decodeBody(c, &req, pageMessages, true); err != nil {
		return err
	}
	if err := h.validator.Validate(req, func(field string) string { return field + " is required" }); err != nil {
		return err
	}

	res, err := h.deps.Pages.PublishArticle(c.UserContext(), req.ArticleID, req.DeleteFlag)
	if err != nil {
		return err
	}

	message := "Detail page generated successfully"
	if res.Deleted {
		message = "Detail page deleted successfully"
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"message":           message,
		"file_path":         res.FilePath,
		"news_page_updated": res.NewsPageUpdated,
	})
}
