package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware is a fixed-window counter per caller and path.
// Callers are identified by their bearer token when they send one, so
// customers behind a shared egress IP do not starve each other. Redis
// errors fail open.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("rl:tactics:%s:%s", callerKey(c), c.Path())

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}

		return c.Next()
	}
}

func callerKey(c *fiber.Ctx) string {
	if token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); token != "" {
		sum := sha256.Sum256([]byte(token))
		return "tok:" + hex.EncodeToString(sum[:8])
	}
	return "ip:" + c.IP()
}
