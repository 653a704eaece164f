package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

var publicPrefixes = []string{"/health", "/api/v1/health", "/metrics", "/swagger"}

// Auth provides mock Bearer token authentication: any non-empty token is
// accepted and stored in Locals under "auth_token". Health, metrics and
// swagger paths bypass it.
func Auth() fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "missing Authorization header")
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c, "invalid Authorization header format, expected 'Bearer <token>'")
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return unauthorized(c, "empty bearer token")
		}

		c.Locals("auth_token", token)
		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
