// Command preview renders the site pages from the live content store and
// serves them locally without pushing anything to the site repository.
package main

import (
	"strings"

	"github.com/asahigaoka/sitehooks/internal/config"
	"github.com/asahigaoka/sitehooks/internal/contentstore"
	"github.com/asahigaoka/sitehooks/internal/github"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/middleware"
	"github.com/asahigaoka/sitehooks/internal/publisher"
	"github.com/gofiber/fiber/v2"
)

const port = "3000"

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Output: "stdout", Pretty: true}); err != nil {
		panic(err)
	}
	log := logger.Get()

	if err := cfg.Require(config.ComponentPages); err != nil {
		log.Fatal().Err(err).Msg("Preview needs the content store and repository settings")
	}

	pages := publisher.New(
		contentstore.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, contentstore.DefaultTimeouts),
		github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubBranch, cfg.HTTPTimeout),
		cfg.SiteBaseURL,
	)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.NewLogger())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/news.html")
	})

	// ?today=YYYY-MM-DD previews another day
	app.Get("/news.html", func(c *fiber.Ctx) error {
		today := pages.Today()
		if s := c.Query("today"); s != "" {
			day, err := publisher.ParseDay(s)
			if err != nil {
				return err
			}
			today = day
		}

		html, _, err := pages.RenderNewsPage(c.UserContext(), today)
		if err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.SendString(html)
	})

	app.Get("/news/:page", func(c *fiber.Ctx) error {
		html, err := pages.RenderPage(c.UserContext(), strings.TrimSuffix(c.Params("page"), ".html"))
		if err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.SendString(html)
	})

	log.Info().Msgf("Preview server starting on http://localhost:%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start preview server")
	}
}
