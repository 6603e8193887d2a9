package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

const maxUploadSizeBytes = 5 * 1024 * 1024

type ProfileHandler struct {
	profileService *services.ProfileService
	storageService services.StorageService
}

func NewProfileHandler(profileService *services.ProfileService, storageService services.StorageService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		storageService: storageService,
	}
}

// Get serves any user's profile. A missing row degrades to the placeholder
// profile instead of a 404; chat screens render it while signup propagation
// catches up.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	profile, err := h.profileService.Resolve(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}
	return c.JSON(profile)
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Username        *string `json:"username"`
	Gender          *string `json:"gender"`
	ConsultationFee *int64  `json:"consultation_fee"`
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ConsultationFee != nil && *req.ConsultationFee < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Consultation fee cannot be negative"})
	}

	profile, err := h.profileService.Update(c.Context(), userID, repository.UpdateProfileInput{
		Name:            req.Name,
		Username:        req.Username,
		Gender:          req.Gender,
		ConsultationFee: req.ConsultationFee,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search term is required"})
	}

	profiles, err := h.profileService.Search(c.Context(), term, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search profiles"})
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

func (h *ProfileHandler) ListProfessionals(c *fiber.Ctx) error {
	profiles, err := h.profileService.ListProfessionals(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list professionals"})
	}
	return c.JSON(fiber.Map{"professionals": profiles})
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	avatarURL, err := h.storageService.UploadImage(c.Context(), file, userID, fileHeader.Filename, "avatars")
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImageType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	current, err := h.profileService.Resolve(c.Context(), userID)
	if err == nil && current.ProfilePicURL != nil && *current.ProfilePicURL != "" && *current.ProfilePicURL != avatarURL {
		_ = h.storageService.DeleteFile(c.Context(), *current.ProfilePicURL)
	}

	profile, err := h.profileService.Update(c.Context(), userID, repository.UpdateProfileInput{
		ProfilePicURL: &avatarURL,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile_pic_url": avatarURL,
		"profile":         profile,
	})
}
