package middleware

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vpnflow/referral_engine/internal/guard"
)

// RateLimit gates a route through the abuse guard's sliding-window limiter.
// The user is identified by the user_id body field or the userId path
// parameter; requests carrying neither pass through unkeyed.
func RateLimit(g *guard.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := extractUserID(c)
		if userID == 0 {
			return c.Next()
		}
		if allowed, reason := g.CheckRateLimit(userID); !allowed {
			return fiber.NewError(http.StatusTooManyRequests, reason)
		}
		return c.Next()
	}
}

func extractUserID(c *fiber.Ctx) int64 {
	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.BodyParser(&body); err == nil && body.UserID > 0 {
		return body.UserID
	}
	if param := c.Params("userId"); param != "" {
		if id, err := strconv.ParseInt(param, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}
