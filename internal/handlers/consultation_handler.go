package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

type ConsultationHandler struct {
	consultationService consultationApplicationService
}

type consultationApplicationService interface {
	Request(ctx context.Context, clientID, professionalID int64, scheduledFor *string) (*models.Consultation, error)
	Accept(ctx context.Context, professionalID, consultationID int64) (*models.Chat, error)
	Reject(ctx context.Context, professionalID, consultationID int64) (*models.Consultation, error)
	End(ctx context.Context, professionalID, consultationID int64) (*models.CompletedChat, error)
	Delete(ctx context.Context, professionalID, consultationID int64) error
	SendMessage(ctx context.Context, actorID, consultationID int64, message string) (*services.ConsultationDelivery, error)
	ListMessages(ctx context.Context, actorID, consultationID int64) ([]models.ChatMessage, *models.Chat, error)
	MarkRead(ctx context.Context, actorID, consultationID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.Consultation, error)
	ListChats(ctx context.Context, userID int64) ([]models.Chat, error)
	GetChat(ctx context.Context, actorID, consultationID int64) (*models.Chat, error)
	ListArchived(ctx context.Context, userID int64) ([]models.CompletedChat, error)
	ArchivedMessages(ctx context.Context, actorID, completedChatID int64) ([]models.CompletedChatMessage, error)
}

func NewConsultationHandler(consultationService *services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultationService: consultationService}
}

func consultationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Consultation not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Consultation is not in the required state"})
	case errors.Is(err, services.ErrSessionEnded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Consultation session has ended"})
	case errors.Is(err, services.ErrInsufficientCoins):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Insufficient coins"})
	case errors.Is(err, services.ErrProfessionalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Professional not found"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

type requestConsultationRequest struct {
	ProfessionalID int64   `json:"professional_id"`
	ScheduledFor   *string `json:"scheduled_for"`
}

func (h *ConsultationHandler) Request(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req requestConsultationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	consultation, err := h.consultationService.Request(c.Context(), userID, req.ProfessionalID, req.ScheduledFor)
	if err != nil {
		return consultationError(c, err, "Failed to request consultation")
	}
	return c.Status(fiber.StatusCreated).JSON(consultation)
}

func (h *ConsultationHandler) Accept(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if role, ok := actorRole(c); !ok || role != "doctor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	chat, err := h.consultationService.Accept(c.Context(), userID, consultationID)
	if err != nil {
		return consultationError(c, err, "Failed to accept consultation")
	}
	return c.JSON(chat)
}

func (h *ConsultationHandler) Reject(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if role, ok := actorRole(c); !ok || role != "doctor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	consultation, err := h.consultationService.Reject(c.Context(), userID, consultationID)
	if err != nil {
		return consultationError(c, err, "Failed to reject consultation")
	}
	return c.JSON(consultation)
}

func (h *ConsultationHandler) End(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if role, ok := actorRole(c); !ok || role != "doctor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	archived, err := h.consultationService.End(c.Context(), userID, consultationID)
	if err != nil {
		return consultationError(c, err, "Failed to end consultation session")
	}
	return c.JSON(archived)
}

func (h *ConsultationHandler) Delete(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if role, ok := actorRole(c); !ok || role != "doctor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	if err := h.consultationService.Delete(c.Context(), userID, consultationID); err != nil {
		return consultationError(c, err, "Failed to delete consultation")
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (h *ConsultationHandler) List(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	consultations, err := h.consultationService.ListForUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list consultations"})
	}
	return c.JSON(fiber.Map{"consultations": consultations})
}

func (h *ConsultationHandler) ListChats(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	chats, err := h.consultationService.ListChats(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list chats"})
	}
	return c.JSON(fiber.Map{"chats": chats})
}

func (h *ConsultationHandler) GetChat(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	chat, err := h.consultationService.GetChat(c.Context(), userID, consultationID)
	if err != nil {
		return consultationError(c, err, "Failed to fetch chat")
	}
	return c.JSON(chat)
}

func (h *ConsultationHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	messages, chat, err := h.consultationService.ListMessages(c.Context(), userID, consultationID)
	if err != nil {
		return consultationError(c, err, "Failed to list messages")
	}
	return c.JSON(fiber.Map{
		"chat":     chat,
		"messages": messages,
	})
}

func (h *ConsultationHandler) Send(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	delivery, err := h.consultationService.SendMessage(c.Context(), userID, consultationID, req.Content)
	if err != nil {
		return consultationError(c, err, "Failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(delivery.Message)
}

func (h *ConsultationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	consultationID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid consultation id"})
	}

	if err := h.consultationService.MarkRead(c.Context(), userID, consultationID); err != nil {
		return consultationError(c, err, "Failed to mark messages read")
	}
	return c.JSON(fiber.Map{"updated": true})
}

func (h *ConsultationHandler) ListArchived(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	chats, err := h.consultationService.ListArchived(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list archived chats"})
	}
	return c.JSON(fiber.Map{"archived_chats": chats})
}

func (h *ConsultationHandler) ArchivedMessages(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	completedChatID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat id"})
	}

	messages, err := h.consultationService.ArchivedMessages(c.Context(), userID, completedChatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Archived chat not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list archived messages"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}
