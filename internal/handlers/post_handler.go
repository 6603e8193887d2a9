package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/services"
)

type PostHandler struct {
	feedService    *services.FeedService
	storageService services.StorageService
}

func NewPostHandler(feedService *services.FeedService, storageService services.StorageService) *PostHandler {
	return &PostHandler{feedService: feedService, storageService: storageService}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req services.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post, err := h.feedService.CreatePost(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and content are required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	posts, meta, err := h.feedService.ListPosts(c.Context(), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list posts"})
	}
	return c.JSON(fiber.Map{
		"posts":      posts,
		"pagination": meta,
	})
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	post, err := h.feedService.GetPost(c.Context(), postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch post"})
	}
	return c.JSON(post)
}

func (h *PostHandler) ListByAuthor(c *fiber.Ctx) error {
	authorID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	posts, err := h.feedService.ListPostsByAuthor(c.Context(), authorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list posts"})
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// UploadImage stores a post cover and returns its public URL; the client
// passes it back as image_url when creating the post.
func (h *PostHandler) UploadImage(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is empty"})
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file exceeds 5MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open image file"})
	}
	defer file.Close()

	imageURL, err := h.storageService.UploadImage(c.Context(), file, userID, fileHeader.Filename, "posts")
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImageType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image must be a jpg, jpeg, png, or webp file"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
	}

	return c.JSON(fiber.Map{"image_url": imageURL})
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	if err := h.feedService.DeletePost(c.Context(), postID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete post"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
