package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-service/internal/api/dto"
	"github.com/spec-kit/credit-service/internal/auth"
	"github.com/spec-kit/credit-service/internal/service"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

// CreditCardHandler exposes card endpoints.
type CreditCardHandler struct {
	cards *service.CreditCardService
}

// NewCreditCardHandler constructs handler.
func NewCreditCardHandler(cards *service.CreditCardService) *CreditCardHandler {
	return &CreditCardHandler{cards: cards}
}

// Open handles POST /credit_card/new?limit=N.
func (h *CreditCardHandler) Open(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	card, err := h.cards.Open(c.UserContext(), user, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCreditCardResponse(card)})
}

// IncreaseLimit handles POST /credit_card/increase_limit?limit=N.
func (h *CreditCardHandler) IncreaseLimit(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	card, err := h.cards.IncreaseLimit(c.UserContext(), user, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCreditCardResponse(card)})
}

// Current handles GET /credit_card.
func (h *CreditCardHandler) Current(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	card, err := h.cards.Current(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCreditCardResponse(card)})
}

// Close handles POST /credit_card/close.
func (h *CreditCardHandler) Close(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if _, err := h.cards.Close(c.UserContext(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Detail: "closed"}})
}

func limitParam(c *fiber.Ctx) (int64, error) {
	raw := c.Query("limit")
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return 0, apperrors.NewValidationError("limit must be a positive integer", map[string]any{"field": "limit"})
	}
	return limit, nil
}
