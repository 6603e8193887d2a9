package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/services"
)

type ConnectionHandler struct {
	feedService *services.FeedService
}

func NewConnectionHandler(feedService *services.FeedService) *ConnectionHandler {
	return &ConnectionHandler{feedService: feedService}
}

type connectionRequest struct {
	TargetID int64 `json:"target_id"`
}

func (h *ConnectionHandler) Request(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req connectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	connection, err := h.feedService.RequestConnection(c.Context(), userID, req.TargetID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid target"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create connection request"})
	}
	return c.Status(fiber.StatusCreated).JSON(connection)
}

type connectionResponse struct {
	Accept bool `json:"accept"`
}

func (h *ConnectionHandler) Respond(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	connectionID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid connection id"})
	}

	var req connectionResponse
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	connection, err := h.feedService.RespondToConnection(c.Context(), connectionID, userID, req.Accept)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStateTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Connection request is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to respond to connection request"})
	}
	return c.JSON(connection)
}

func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	connections, err := h.feedService.ListConnections(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list connections"})
	}
	return c.JSON(fiber.Map{"connections": connections})
}

func (h *ConnectionHandler) GetWith(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	peerID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	connection, err := h.feedService.ConnectionWith(c.Context(), userID, peerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No connection"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch connection"})
	}
	return c.JSON(connection)
}
