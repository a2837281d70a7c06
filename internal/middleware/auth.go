package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// AuthConfig defines the config for the API key middleware
type AuthConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Validator is a function to validate the API key.
	// Required.
	Validator func(key string) (bool, error)

	// ErrorHandler defines a function which is executed for an invalid API key.
	// Optional. Default: 401 Invalid or missing API key
	ErrorHandler fiber.ErrorHandler

	// ContextKey is the key used to store the API key in the context.
	// Optional. Default: "apiKey"
	ContextKey string

	// Header is the header key where to get the API key from.
	// Optional. Default: "X-API-Key"
	Header string
}

// ConfigDefault is the default config
var ConfigDefault = AuthConfig{
	Next: nil,
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		logger.Get().Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Err(err).
			Msg("Authentication failed")

		return apperr.Auth("Invalid or missing API key")
	},
	ContextKey: "apiKey",
	Header:     "X-API-Key",
}

// NewAuth creates an API key middleware.
func NewAuth(config ...AuthConfig) fiber.Handler {
	cfg := ConfigDefault

	if len(config) > 0 {
		cfg = config[0]

		if cfg.Next == nil {
			cfg.Next = ConfigDefault.Next
		}
		if cfg.ErrorHandler == nil {
			cfg.ErrorHandler = ConfigDefault.ErrorHandler
		}
		if cfg.ContextKey == "" {
			cfg.ContextKey = ConfigDefault.ContextKey
		}
		if cfg.Header == "" {
			cfg.Header = ConfigDefault.Header
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		authHeader := c.Get(cfg.Header)
		if authHeader == "" {
			return cfg.ErrorHandler(c, errors.New("missing API key"))
		}

		// For "Bearer " prefixed tokens
		token := strings.TrimPrefix(authHeader, "Bearer ")

		valid, err := cfg.Validator(token)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if !valid {
			return cfg.ErrorHandler(c, errors.New("invalid API key"))
		}

		c.Locals(cfg.ContextKey, token)
		return c.Next()
	}
}

// AdminOnly requires the admin key in X-API-Key. An empty admin key leaves
// the route open.
func AdminOnly(adminKey string) fiber.Handler {
	return NewAuth(AuthConfig{
		Next: func(c *fiber.Ctx) bool {
			return adminKey == "" || c.Method() == fiber.MethodOptions
		},
		Validator: func(key string) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1, nil
		},
	})
}

// SignatureConfig defines the config for the webhook signature middleware
type SignatureConfig struct {
	// Secret returns the channel secret. It is read per request so a
	// missing secret is reported by the configuration check instead.
	Secret func() string

	// Header carrying the signature.
	// Optional. Default: line.SignatureHeader
	Header string
}

// NewSignature rejects webhook calls whose body is empty or not signed with
// the channel secret.
func NewSignature(cfg SignatureConfig) fiber.Handler {
	if cfg.Header == "" {
		cfg.Header = line.SignatureHeader
	}

	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return apperr.Validation("Empty body")
		}

		signature := c.Get(cfg.Header)
		if signature == "" {
			logger.Get().Warn().Str("ip", c.IP()).Msg("Webhook call without signature")
			return apperr.Auth("Missing signature")
		}

		if !webhook.ValidateSignature(cfg.Secret(), signature, body) {
			logger.Get().Warn().Str("ip", c.IP()).Msg("Webhook signature mismatch")
			return apperr.Auth("Invalid signature")
		}

		return c.Next()
	}
}
