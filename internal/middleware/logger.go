package middleware

import (
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: skips CORS preflights
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// UserAgent adds the caller's user agent. Webhook senders identify
	// themselves there.
	UserAgent bool
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Next: func(c *fiber.Ctx) bool {
		return c.Method() == fiber.MethodOptions
	},
}

// NewLogger creates a request logging middleware. Each request logs one
// line at a level chosen by its final status; failed requests carry the
// error kind.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	cfg := DefaultLoggerConfig
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Next == nil {
			cfg.Next = DefaultLoggerConfig.Next
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		// the error handler has not run yet, so derive the final status
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", c.Route().Path).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("latency", latency)

		if cfg.UserAgent {
			event = event.Str("user_agent", c.Get(fiber.HeaderUserAgent))
		}
		if err != nil {
			event = event.Str("kind", apperr.KindOf(err).String()).Err(err)
		}

		event.Msg("request")
		return err
	}
}

// RequestLogger is the logger middleware used by the service. It keeps
// the default skip rule and records the user agent.
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{UserAgent: true})
}
