package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/almas-cp/Saner-sub000/internal/presence"
)

type PresenceHandler struct {
	store *presence.Store
}

func NewPresenceHandler(store *presence.Store) *PresenceHandler {
	return &PresenceHandler{store: store}
}

func (h *PresenceHandler) Get(c *fiber.Ctx) error {
	if _, ok := actorID(c); !ok {
		return unauthorized(c)
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Presence is not configured"})
	}

	online, err := h.store.IsOnline(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch presence"})
	}

	response := fiber.Map{
		"user_id": userID,
		"online":  online,
	}
	if !online {
		lastSeen, err := h.store.LastSeen(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch presence"})
		}
		if lastSeen != "" {
			response["last_seen"] = lastSeen
		}
	}
	return c.JSON(response)
}
