package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const CtxCallerToken = "caller_token"

// BearerMiddleware requires an "Authorization: Bearer <token>" header and
// stores the raw token. Verification happens in the service, which owns
// tenant resolution.
func BearerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader || strings.TrimSpace(tokenStr) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		c.Locals(CtxCallerToken, tokenStr)
		return c.Next()
	}
}

func GetCallerToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CtxCallerToken).(string)
	return token
}

// InternalKeyMiddleware guards operator endpoints with the shared
// X-Internal-Key header.
func InternalKeyMiddleware(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get("X-Internal-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "internal access required"})
		}
		return c.Next()
	}
}
