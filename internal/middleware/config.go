package middleware

import (
	"github.com/asahigaoka/sitehooks/internal/config"
	"github.com/gofiber/fiber/v2"
)

// RequireConfig fails the request with a configuration error when any
// mandatory setting of the component is missing.
func RequireConfig(cfg *config.Config, component config.Component) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := cfg.Require(component); err != nil {
			return err
		}
		return c.Next()
	}
}
