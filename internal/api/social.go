package api

import (
	"encoding/json"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/gofiber/fiber/v2"
)

type broadcastRequest struct {
	Message   string    `json:"message" validate:"required"`
	ArticleID models.ID `json:"article_id" validate:"required"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required"`
}

func mandatory(field string) string {
	if field == "article_id" {
		return "'article_id' field is mandatory for duplicate prevention"
	}
	return "'" + field + "' field is mandatory"
}

// Broadcast handles POST /api/line/broadcast
func (h *Handlers) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := decodeBody(c, &req, socialMessages, false); err != nil {
		return err
	}
	if err := h.validator.Validate(req, mandatory); err != nil {
		return err
	}
	if err := h.links.Check(req.Message); err != nil {
		return err
	}

	res, err := h.deps.Broadcast.Send(c.UserContext(), req.ArticleID, req.Message)
	if err != nil {
		return err
	}

	if res.Skipped {
		return c.JSON(fiber.Map{
			"status":     "skipped",
			"message":    "LINE notification already sent for this article",
			"article_id": req.ArticleID,
		})
	}

	return c.JSON(fiber.Map{
		"status":        "success",
		"line_response": res.Response,
		"article_id":    req.ArticleID,
	})
}

// Notify handles POST /api/line/notify
func (h *Handlers) Notify(c *fiber.Ctx) error {
	var req messageRequest
	if err := decodeBody(c, &req, socialMessages, false); err != nil {
		return err
	}
	if err := h.validator.Validate(req, mandatory); err != nil {
		return err
	}
	if err := h.links.Check(req.Message); err != nil {
		return err
	}

	resp, err := h.deps.Broadcast.SendUnguarded(c.UserContext(), req.Message)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"status": "success", "line_response": resp})
}

// Webhook handles POST /api/line/webhook. The signature middleware has
// already checked the body.
func (h *Handlers) Webhook(c *fiber.Ctx) error {
	var payload line.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return apperr.Validation("Invalid JSON")
	}

	if len(payload.Events) == 0 {
		return c.JSON(fiber.Map{"status": "ok", "message": "No events"})
	}

	logger.Get().Info().Str("destination", payload.Destination).Int("events", len(payload.Events)).Msg("Webhook received")
	h.deps.Chat.HandleEvents(c.UserContext(), payload)

	return c.JSON(fiber.Map{"status": "ok"})
}

// XPost handles POST /api/x/post
func (h *Handlers) XPost(c *fiber.Ctx) error {
	var req messageRequest
	if err := decodeBody(c, &req, socialMessages, false); err != nil {
		return err
	}
	if err := h.validator.Validate(req, mandatory); err != nil {
		return err
	}
	if err := h.links.Check(req.Message); err != nil {
		return err
	}

	resp, err := h.deps.Poster.Post(c.UserContext(), req.Message)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"status": "success", "tweet_response": resp})
}
