package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// KeyFunc extracts the per-principal identifier for a request, e.g. the
// authenticated user id or the exam id from the path.
type KeyFunc func(c *fiber.Ctx) string

// Middleware enforces the named category on a route. Rejections answer 429
// with a retry hint; the limiter itself never errors the request.
func Middleware(l *Limiter, category string, keyFn KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := ""
		if keyFn != nil {
			identifier = keyFn(c)
		}

		res := l.Consume(c.IP(), identifier, category)
		if !res.Allowed {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"message":     "Too many requests",
				"retry_after": retryAfter,
			})
		}
		return c.Next()
	}
}
