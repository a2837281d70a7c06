package middleware

import "github.com/gofiber/fiber/v2"

// CORS sets the cross-origin headers on every response and answers
// preflight requests with 200 {"status":"ok"}.
func CORS(methods, headers string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, methods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, headers)

		if c.Method() == fiber.MethodOptions {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
		}
		return c.Next()
	}
}
