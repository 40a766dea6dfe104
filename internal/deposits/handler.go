package deposits

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vpnflow/referral_engine/internal/store"
)

// Handler exposes the deposit HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds a deposit HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type depositRequest struct {
	UserID     int64   `json:"user_id"`
	Amount     float64 `json:"amount"`
	ClientTxID string  `json:"client_tx_id"`
}

// Create records a balance top-up and triggers commission propagation.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Deposit(c.UserContext(), Input{
		UserID:     req.UserID,
		Amount:     req.Amount,
		ClientTxID: req.ClientTxID,
	})
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(result)
}
