package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vpnflow/referral_engine/internal/store"
)

// userLookup returns a handler exposing a user's referral-facing fields.
func userLookup(userStore store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "user id must be numeric")
		}

		user, err := userStore.GetUser(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(user)
	}
}
