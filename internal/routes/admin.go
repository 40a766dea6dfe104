package routes

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vpnflow/referral_engine/internal/middleware"
)

// RegisterAdminRoutes wires operator endpoints behind admin token auth.
func RegisterAdminRoutes(r fiber.Router, d Deps) {
	admin := r.Group("/admin", middleware.AdminAuth(d.Cfg.AdminTokenHash))

	admin.Get("/guard/stats", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(d.Guard.Snapshot())
	})

	admin.Post("/guard/reset/:userId", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "user id must be numeric")
		}
		d.Guard.ResetUserLimits(userID)
		return c.Status(http.StatusOK).JSON(fiber.Map{"user_id": userID, "reset": true})
	})

	admin.Get("/guard/suspicious/:userId", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "user id must be numeric")
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"user_id":    userID,
			"suspicious": d.Guard.DetectSuspiciousActivity(userID),
		})
	})
}
