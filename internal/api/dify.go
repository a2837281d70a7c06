package api

import (
	"encoding/base64"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/ai"
	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/gofiber/fiber/v2"
)

type generateRequest struct {
	Title    string `json:"title" validate:"required_without=ImageURL"`
	Summary  string `json:"summary" validate:"required_without=ImageURL"`
	Date     string `json:"date" validate:"required_without=ImageURL"`
	DateTo   string `json:"date_to"`
	IntroURL string `json:"intro_url"`
	ImageURL string `json:"image_url"`
}

type analyzeRequest struct {
	Request string `json:"request" validate:"required"`
}

func requiredJa(field string) string {
	return field + " は必須です"
}

// GenerateContent handles POST /api/dify/generate
func (h *Handlers) GenerateContent(c *fiber.Ctx) error {
	var req generateRequest
	if err := decodeBody(c, &req, difyMessages, false); err != nil {
		return err
	}
	if err := h.validator.Validate(req, requiredJa); err != nil {
		return err
	}

	inputs := ai.GenerateInputs(ai.ArticleBrief{
		Title:    req.Title,
		Summary:  req.Summary,
		Date:     req.Date,
		DateTo:   req.DateTo,
		IntroURL: req.IntroURL,
		ImageURL: req.ImageURL,
	}, h.config.IntroURL)

	outputs, err := h.deps.Generate.Run(c.UserContext(), inputs)
	if err != nil {
		return err
	}

	result := ai.GenerateExtractor.Extract(outputs)
	logger.Get().Info().Str("tier", string(result.Tier)).Msg("Article text generated")

	return c.JSON(fiber.Map{"success": true, "data": result.Fields})
}

// AnalyzeMedia handles POST /api/dify/analyze
func (h *Handlers) AnalyzeMedia(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := decodeBody(c, &req, difyMessages, false); err != nil {
		return err
	}
	if err := h.validator.Validate(req, requiredJa); err != nil {
		return err
	}

	data, err := decodeMedia(req.Request)
	if err != nil {
		return err
	}

	url, err := h.deps.Media.UploadImage(c.UserContext(), data)
	if err != nil {
		return err
	}

	outputs, err := h.deps.Analyze.Run(c.UserContext(), ai.MediaInputs(url))
	if err != nil {
		return err
	}

	result := ai.MediaExtractor.Extract(outputs)
	logger.Get().Info().Str("tier", string(result.Tier)).Str("image_url", url).Msg("Media analysed")

	return c.JSON(fiber.Map{"success": true, "data": result.Fields, "image_url": url})
}

// decodeMedia accepts plain base64 or a data URL.
func decodeMedia(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, apperr.Validation("request はBase64形式である必要があります")
	}
	return data, nil
}
