package services

import (
	"context"
	"errors"
	"strings"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

type postStore interface {
	Create(ctx context.Context, input repository.CreatePostInput) (*models.Post, error)
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	ListByAuthor(ctx context.Context, userID int64) ([]models.Post, error)
	DeleteOwn(ctx context.Context, postID, userID int64) (bool, error)
}

type connectionStore interface {
	CreateOrGet(ctx context.Context, requesterID, targetID int64) (*models.Connection, error)
	UpdateStatusIfPending(ctx context.Context, connectionID, targetID int64, status string) (*models.Connection, error)
	GetPair(ctx context.Context, userA, userB int64) (*models.Connection, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Connection, error)
}

// FeedService covers the public post feed and the connection graph that gates
// direct messaging.
type FeedService struct {
	postRepo       postStore
	connectionRepo connectionStore
	profileService *ProfileService
}

func NewFeedService(
	postRepo postStore,
	connectionRepo connectionStore,
	profileService *ProfileService,
) *FeedService {
	return &FeedService{
		postRepo:       postRepo,
		connectionRepo: connectionRepo,
		profileService: profileService,
	}
}

type CreatePostRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
}

// CreatePost denormalizes the author's profile onto the row so feed reads
// never join profiles.
func (s *FeedService) CreatePost(ctx context.Context, authorID int64, req CreatePostRequest) (*models.Post, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	profile, err := s.profileService.Resolve(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.Create(ctx, repository.CreatePostInput{
		UserID:           authorID,
		Title:            title,
		Content:          content,
		ImageURL:         req.ImageURL,
		AuthorName:       profile.Name,
		AuthorUsername:   profile.Username,
		AuthorProfilePic: profile.ProfilePicURL,
	})
}

func (s *FeedService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

func (s *FeedService) ListPosts(ctx context.Context, page, perPage int) ([]models.Post, *models.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	posts, total, err := s.postRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	meta := &models.PaginationMeta{
		Page:       page,
		Limit:      perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return posts, meta, nil
}

func (s *FeedService) ListPostsByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	return s.postRepo.ListByAuthor(ctx, authorID)
}

func (s *FeedService) DeletePost(ctx context.Context, postID, actorID int64) error {
	deleted, err := s.postRepo.DeleteOwn(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if !deleted {
		return pgx.ErrNoRows
	}
	return nil
}

// RequestConnection creates or returns the pending edge between two users.
// Re-requesting an existing pair is a no-op rather than an error.
func (s *FeedService) RequestConnection(ctx context.Context, requesterID, targetID int64) (*models.Connection, error) {
	if targetID <= 0 || targetID == requesterID {
		return nil, ErrInvalidInput
	}
	return s.connectionRepo.CreateOrGet(ctx, requesterID, targetID)
}

// RespondToConnection accepts or declines a pending request. Only the target
// of the request may respond, and only while it is still pending.
func (s *FeedService) RespondToConnection(ctx context.Context, connectionID, targetID int64, accept bool) (*models.Connection, error) {
	status := "declined"
	if accept {
		status = "accepted"
	}
	connection, err := s.connectionRepo.UpdateStatusIfPending(ctx, connectionID, targetID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return connection, nil
}

func (s *FeedService) ConnectionWith(ctx context.Context, actorID, peerID int64) (*models.Connection, error) {
	return s.connectionRepo.GetPair(ctx, actorID, peerID)
}

func (s *FeedService) ListConnections(ctx context.Context, userID int64) ([]models.Connection, error) {
	return s.connectionRepo.ListForUser(ctx, userID)
}
