package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
)

type stubPostStore struct {
	lastCreate repository.CreatePostInput
	deleted    bool
}

func (s *stubPostStore) Create(_ context.Context, input repository.CreatePostInput) (*models.Post, error) {
	s.lastCreate = input
	return &models.Post{
		ID:               1,
		UserID:           input.UserID,
		Title:            input.Title,
		Content:          input.Content,
		ImageURL:         input.ImageURL,
		AuthorName:       input.AuthorName,
		AuthorUsername:   input.AuthorUsername,
		AuthorProfilePic: input.AuthorProfilePic,
	}, nil
}

func (s *stubPostStore) GetByID(context.Context, int64) (*models.Post, error) { return nil, nil }

func (s *stubPostStore) List(context.Context, int, int) ([]models.Post, int, error) {
	return nil, 0, nil
}

func (s *stubPostStore) ListByAuthor(context.Context, int64) ([]models.Post, error) {
	return nil, nil
}

func (s *stubPostStore) DeleteOwn(context.Context, int64, int64) (bool, error) {
	return s.deleted, nil
}

type stubConnectionStore struct {
	connection *models.Connection
	updateErr  error
}

func (s *stubConnectionStore) CreateOrGet(context.Context, int64, int64) (*models.Connection, error) {
	return s.connection, nil
}

func (s *stubConnectionStore) UpdateStatusIfPending(context.Context, int64, int64, string) (*models.Connection, error) {
	return s.connection, s.updateErr
}

func (s *stubConnectionStore) GetPair(context.Context, int64, int64) (*models.Connection, error) {
	return s.connection, nil
}

func (s *stubConnectionStore) ListForUser(context.Context, int64) ([]models.Connection, error) {
	return nil, nil
}

func TestCreatePostDenormalizesAuthorProfile(t *testing.T) {
	name := "Amara"
	username := "amara_k"
	picURL := "https://cdn.example.com/avatars/7.png"
	posts := &stubPostStore{}
	service := NewFeedService(posts, &stubConnectionStore{}, NewProfileService(&stubProfileStore{
		profile: &models.Profile{UserID: 7, Name: &name, Username: &username, ProfilePicURL: &picURL},
	}))

	post, err := service.CreatePost(context.Background(), 7, CreatePostRequest{
		Title:   "Morning walks",
		Content: "They help more than I expected.",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if posts.lastCreate.AuthorName == nil || *posts.lastCreate.AuthorName != name {
		t.Fatalf("expected author name %q on the row, got %v", name, posts.lastCreate.AuthorName)
	}
	if posts.lastCreate.AuthorUsername == nil || *posts.lastCreate.AuthorUsername != username {
		t.Fatalf("expected author username %q on the row, got %v", username, posts.lastCreate.AuthorUsername)
	}
	if posts.lastCreate.AuthorProfilePic == nil || *posts.lastCreate.AuthorProfilePic != picURL {
		t.Fatalf("expected profile pic URL %q on the row, got %v", picURL, posts.lastCreate.AuthorProfilePic)
	}
	if post.AuthorProfilePic == nil || *post.AuthorProfilePic != picURL {
		t.Fatalf("expected profile pic URL on the returned post, got %v", post.AuthorProfilePic)
	}
}

func TestCreatePostRejectsBlankTitleOrContent(t *testing.T) {
	service := NewFeedService(&stubPostStore{}, &stubConnectionStore{}, NewProfileService(&stubProfileStore{}))

	if _, err := service.CreatePost(context.Background(), 7, CreatePostRequest{Title: "  ", Content: "body"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
	if _, err := service.CreatePost(context.Background(), 7, CreatePostRequest{Title: "title", Content: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank content, got %v", err)
	}
}

func TestRequestConnectionRejectsSelf(t *testing.T) {
	service := NewFeedService(&stubPostStore{}, &stubConnectionStore{}, NewProfileService(&stubProfileStore{}))

	if _, err := service.RequestConnection(context.Background(), 7, 7); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-connection, got %v", err)
	}
}

func TestRespondToConnectionMapsMissingPendingRow(t *testing.T) {
	service := NewFeedService(&stubPostStore{}, &stubConnectionStore{updateErr: pgx.ErrNoRows}, NewProfileService(&stubProfileStore{}))

	if _, err := service.RespondToConnection(context.Background(), 3, 7, true); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}
