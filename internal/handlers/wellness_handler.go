package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

type WellnessHandler struct {
	wellnessService wellnessApplicationService
}

type wellnessApplicationService interface {
	LogMood(ctx context.Context, userID int64, value int, note *string) (*models.MoodEntry, error)
	MoodHistory(ctx context.Context, userID int64, limit int) ([]models.MoodEntry, error)
	CompleteBreathSession(ctx context.Context, userID int64, pattern string, durationSeconds, cycles int) (*models.BreathSession, error)
	BreathHistory(ctx context.Context, userID int64, limit int) ([]models.BreathSession, error)
	CoinBalance(ctx context.Context, userID int64) (*models.CoinBalance, error)
}

func NewWellnessHandler(wellnessService *services.WellnessService) *WellnessHandler {
	return &WellnessHandler{wellnessService: wellnessService}
}

type logMoodRequest struct {
	Value int     `json:"value"`
	Note  *string `json:"note"`
}

func (h *WellnessHandler) LogMood(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req logMoodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	entry, err := h.wellnessService.LogMood(c.Context(), userID, req.Value, req.Note)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Mood value must be between 1 and 5"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log mood"})
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *WellnessHandler) MoodHistory(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	entries, err := h.wellnessService.MoodHistory(c.Context(), userID, c.QueryInt("limit", 30))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch mood history"})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

type breathSessionRequest struct {
	Pattern         string `json:"pattern"`
	DurationSeconds int    `json:"duration_seconds"`
	Cycles          int    `json:"cycles"`
}

func (h *WellnessHandler) CompleteBreathSession(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req breathSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.wellnessService.CompleteBreathSession(c.Context(), userID, req.Pattern, req.DurationSeconds, req.Cycles)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid breath session"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record breath session"})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *WellnessHandler) BreathHistory(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	sessions, err := h.wellnessService.BreathHistory(c.Context(), userID, c.QueryInt("limit", 30))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch breath history"})
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *WellnessHandler) CoinBalance(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	balance, err := h.wellnessService.CoinBalance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coin balance"})
	}
	return c.JSON(balance)
}
