package services

import (
	"context"
	"errors"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

type profileStore interface {
	EnsureExists(ctx context.Context, userID int64, isDoctor bool) error
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdateProfileInput) (*models.Profile, error)
	Search(ctx context.Context, term string, limit int) ([]models.Profile, error)
	ListProfessionals(ctx context.Context) ([]models.Profile, error)
}

type ProfileService struct {
	profileRepo profileStore
}

func NewProfileService(profileRepo profileStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

const fallbackProfileName = "User"

// Resolve returns the profile for a user id, or a deterministic placeholder
// when the row is missing. A signup can be visible before its profile row is,
// and nothing downstream should fail because of that window. Errors other
// than a miss still propagate.
func (s *ProfileService) Resolve(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FallbackProfile(userID), nil
		}
		return nil, err
	}
	return profile, nil
}

// FallbackProfile is the placeholder served while a profile row is missing.
func FallbackProfile(userID int64) *models.Profile {
	name := fallbackProfileName
	return &models.Profile{
		UserID:   userID,
		Name:     &name,
		IsDoctor: false,
	}
}

// EnsureProfile creates the profile row if absent. Callers may invoke it
// repeatedly; duplicate-key races resolve to a no-op.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID int64, isDoctor bool) error {
	return s.profileRepo.EnsureExists(ctx, userID, isDoctor)
}

func (s *ProfileService) Update(ctx context.Context, userID int64, req repository.UpdateProfileInput) (*models.Profile, error) {
	return s.profileRepo.UpdatePartial(ctx, userID, req)
}

func (s *ProfileService) Search(ctx context.Context, term string, limit int) ([]models.Profile, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.profileRepo.Search(ctx, term, limit)
}

func (s *ProfileService) ListProfessionals(ctx context.Context) ([]models.Profile, error) {
	return s.profileRepo.ListProfessionals(ctx)
}

// DisplayName picks the best available name for chat bindings and post
// denormalization.
func DisplayName(profile *models.Profile) string {
	if profile == nil {
		return fallbackProfileName
	}
	if profile.Name != nil && *profile.Name != "" {
		return *profile.Name
	}
	if profile.Username != nil && *profile.Username != "" {
		return *profile.Username
	}
	return fallbackProfileName
}
