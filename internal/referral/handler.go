package referral

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vpnflow/referral_engine/internal/guard"
)

// Handler exposes referral HTTP endpoints.
type Handler struct {
	ledger *Ledger
	graph  *GraphReader
}

// NewHandler builds a referral HTTP handler.
func NewHandler(ledger *Ledger, graph *GraphReader) *Handler {
	return &Handler{ledger: ledger, graph: graph}
}

type registerRequest struct {
	UserID     int64 `json:"user_id"`
	ReferrerID int64 `json:"referrer_id"`
}

// Register attaches a new user to a referrer's downline.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if ok, reason := guard.ValidateUserID(req.UserID); !ok {
		return fiber.NewError(http.StatusBadRequest, reason)
	}
	if ok, reason := guard.ValidateUserID(req.ReferrerID); !ok {
		return fiber.NewError(http.StatusBadRequest, reason)
	}
	if req.UserID == req.ReferrerID {
		return fiber.NewError(http.StatusBadRequest, "users cannot refer themselves")
	}

	if !h.ledger.Register(c.UserContext(), req.UserID, req.ReferrerID) {
		return fiber.NewError(http.StatusConflict, "registration did not succeed")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":     req.UserID,
		"referrer_id": req.ReferrerID,
		"registered":  true,
	})
}

// Tree returns per-level downline statistics for a user.
func (h *Handler) Tree(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "user id must be numeric")
	}
	if ok, reason := guard.ValidateUserID(userID); !ok {
		return fiber.NewError(http.StatusBadRequest, reason)
	}

	maxLevel := c.QueryInt("max_level", MaxDepth)
	tree, err := h.graph.Tree(c.UserContext(), userID, maxLevel)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(tree)
}
