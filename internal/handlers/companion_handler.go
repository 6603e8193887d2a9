package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/almas-cp/Saner-sub000/internal/services"
)

type CompanionHandler struct {
	companionService *services.CompanionService
}

func NewCompanionHandler(companionService *services.CompanionService) *CompanionHandler {
	return &CompanionHandler{companionService: companionService}
}

func (h *CompanionHandler) History(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	messages, err := h.companionService.History(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch companion history"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

type companionSendRequest struct {
	Content string `json:"content"`
}

func (h *CompanionHandler) Send(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req companionSendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reply, err := h.companionService.Send(c.Context(), userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message content is required"})
		case errors.Is(err, services.ErrCompanionUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Companion is unavailable, your message was saved"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}
