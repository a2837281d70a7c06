package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/broadcast"
	"github.com/asahigaoka/sitehooks/internal/config"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/linkcheck"
	"github.com/asahigaoka/sitehooks/internal/middleware"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/asahigaoka/sitehooks/internal/publisher"
	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

// Workflow runs a blocking AI workflow and returns its outputs.
type Workflow interface {
	Run(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// MediaUploader stores an uploaded image and returns its public URL.
type MediaUploader interface {
	UploadImage(ctx context.Context, data []byte) (string, error)
}

// Broadcaster announces messages to every chat follower.
type Broadcaster interface {
	Send(ctx context.Context, articleID models.ID, message string) (broadcast.Result, error)
	SendUnguarded(ctx context.Context, message string) (map[string]any, error)
}

// EventHandler answers chat webhook events.
type EventHandler interface {
	HandleEvents(ctx context.Context, payload line.WebhookPayload)
}

// Poster publishes a post on the microblog.
type Poster interface {
	Post(ctx context.Context, text string) (map[string]any, error)
}

// Pages regenerates the static site pages.
type Pages interface {
	Today() time.Time
	RegenerateNewsPage(ctx context.Context, today time.Time) (publisher.NewsPageResult, error)
	PublishArticle(ctx context.Context, id models.ID, remove bool) (publisher.ArticleResult, error)
}

// Deps are the collaborators behind the handlers.
type Deps struct {
	Generate  Workflow
	Analyze   Workflow
	Media     MediaUploader
	Broadcast Broadcaster
	Chat      EventHandler
	Poster    Poster
	Pages     Pages
}

type Handlers struct {
	config    *config.Config
	validator *middleware.Validator
	links     linkcheck.Policy
	deps      Deps
}

func NewHandlers(cfg *config.Config, deps Deps) *Handlers {
	return &Handlers{
		config:    cfg,
		validator: middleware.NewValidator(),
		links:     linkcheck.NewPolicy(cfg.AllowedDomains),
		deps:      deps,
	}
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// bodyMessages are the validation messages of one route family.
type bodyMessages struct {
	empty     string
	invalid   string
	notString func(field string) string
}

var (
	difyMessages = bodyMessages{
		empty:     "リクエストボディがありません",
		invalid:   "不正なJSONフォーマットです",
		notString: func(field string) string { return "不正なJSONフォーマットです" },
	}
	socialMessages = bodyMessages{
		empty:     "Request body is required",
		invalid:   "Request body must be valid JSON",
		notString: func(field string) string { return "'" + field + "' must be a string" },
	}
	pageMessages = bodyMessages{
		empty:     "Request body is required",
		invalid:   "Invalid JSON",
		notString: func(field string) string { return "Invalid value for " + field },
	}
)

// decodeBody reads a JSON object into dst. Callers that double-encode send
// the object as a JSON string, which is unwrapped first.
func decodeBody(c *fiber.Ctx, dst any, msgs bodyMessages, allowEmpty bool) error {
	raw := bytes.TrimSpace(c.Body())
	if len(raw) == 0 {
		if allowEmpty {
			return nil
		}
		return apperr.Validation("%s", msgs.empty)
	}

	decode := c.App().Config().JSONDecoder
	if raw[0] == '"' {
		var inner string
		if err := decode(raw, &inner); err != nil {
			return apperr.Validation("%s", msgs.invalid)
		}
		raw = []byte(inner)
	}

	if err := decode(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("%s", msgs.notString(typeErr.Field))
		}
		return apperr.Validation("%s", msgs.invalid)
	}
	return nil
}
