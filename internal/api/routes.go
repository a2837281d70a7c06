package api

import (
	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/config"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	jsonHeaders    = "Content-Type"
	webhookHeaders = "Content-Type," + line.SignatureHeader
	adminHeaders   = "Content-Type,X-API-Key"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, cfg *config.Config, h *Handlers) {
	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")

	// Content generation proxies
	dify := api.Group("/dify")
	post(dify, "/generate", jsonHeaders,
		middleware.RequireConfig(cfg, config.ComponentGenerate),
		h.GenerateContent)
	post(dify, "/analyze", jsonHeaders,
		middleware.RequireConfig(cfg, config.ComponentAnalyze),
		h.AnalyzeMedia)

	// Chat channel
	lineGroup := api.Group("/line")
	post(lineGroup, "/broadcast", jsonHeaders,
		middleware.StatusStyle(),
		middleware.RequireConfig(cfg, config.ComponentBroadcast),
		h.Broadcast)
	post(lineGroup, "/notify", jsonHeaders,
		middleware.StatusStyle(),
		middleware.RequireConfig(cfg, config.ComponentNotify),
		h.Notify)
	post(lineGroup, "/webhook", webhookHeaders,
		middleware.RequireConfig(cfg, config.ComponentWebhook),
		middleware.NewSignature(middleware.SignatureConfig{
			Secret: func() string { return cfg.LineChannelSecret },
		}),
		h.Webhook)

	// Microblog
	post(api.Group("/x"), "/post", jsonHeaders,
		middleware.StatusStyle(),
		middleware.RequireConfig(cfg, config.ComponentXPost),
		h.XPost)

	// Static site generation (admin)
	generate := api.Group("/generate")
	post(generate, "/news", adminHeaders,
		middleware.AdminOnly(cfg.AdminAPIKey),
		middleware.RequireConfig(cfg, config.ComponentPages),
		h.GenerateNews)
	post(generate, "/article", adminHeaders,
		middleware.AdminOnly(cfg.AdminAPIKey),
		middleware.RequireConfig(cfg, config.ComponentPages),
		h.GenerateArticle)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("Endpoint not found")
	})
}

// post registers a POST route with its CORS preflight.
func post(r fiber.Router, path, headers string, handlers ...fiber.Handler) {
	cors := middleware.CORS("POST,OPTIONS", headers)
	r.Options(path, cors)
	r.Post(path, append([]fiber.Handler{cors}, handlers...)...)
}
