package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

// MessageHandler is the REST surface of regular direct-message threads. The
// realtime path shares the same service, so gating and read receipts behave
// identically on both.
type MessageHandler struct {
	chatService directMessageService
}

type directMessageService interface {
	ListConversations(ctx context.Context, actorID int64) ([]models.ConversationSummary, error)
	ListMessages(ctx context.Context, actorID, peerID int64) ([]models.DirectMessage, error)
	SendMessage(ctx context.Context, actorID, peerID int64, content string) (*services.ChatDelivery, error)
	MarkThreadRead(ctx context.Context, readerID, peerID int64) error
}

func NewMessageHandler(chatService *services.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

func (h *MessageHandler) ListConversations(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	conversations, err := h.chatService.ListConversations(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list conversations"})
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	peerID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	messages, err := h.chatService.ListMessages(c.Context(), userID, peerID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list messages"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	peerID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	delivery, err := h.chatService.SendMessage(c.Context(), userID, peerID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message content is required"})
		case errors.Is(err, services.ErrNotConnected):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Users are not connected"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(delivery.Message)
}

func (h *MessageHandler) MarkThreadRead(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	peerID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.chatService.MarkThreadRead(c.Context(), userID, peerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(fiber.Map{"updated": false})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark messages read"})
	}
	return c.JSON(fiber.Map{"updated": true})
}
