package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
)

type stubProfileStore struct {
	profile *models.Profile
	getErr  error
}

func (s *stubProfileStore) EnsureExists(context.Context, int64, bool) error { return nil }

func (s *stubProfileStore) GetByUserID(context.Context, int64) (*models.Profile, error) {
	return s.profile, s.getErr
}

func (s *stubProfileStore) UpdatePartial(context.Context, int64, repository.UpdateProfileInput) (*models.Profile, error) {
	return s.profile, nil
}

func (s *stubProfileStore) Search(context.Context, string, int) ([]models.Profile, error) {
	return nil, nil
}

func (s *stubProfileStore) ListProfessionals(context.Context) ([]models.Profile, error) {
	return nil, nil
}

func TestResolveMissingProfileReturnsPlaceholder(t *testing.T) {
	service := NewProfileService(&stubProfileStore{getErr: pgx.ErrNoRows})

	profile, err := service.Resolve(context.Background(), 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", profile.UserID)
	}
	if profile.Name == nil || *profile.Name != "User" {
		t.Fatalf("expected placeholder name, got %v", profile.Name)
	}
	if profile.IsDoctor {
		t.Fatal("placeholder must not claim professional status")
	}
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	service := NewProfileService(&stubProfileStore{getErr: storeErr})

	if _, err := service.Resolve(context.Background(), 42); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestResolveReturnsStoredProfile(t *testing.T) {
	name := "Dr. Amara"
	service := NewProfileService(&stubProfileStore{
		profile: &models.Profile{UserID: 7, Name: &name, IsDoctor: true},
	})

	profile, err := service.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.Name == nil || *profile.Name != name {
		t.Fatalf("expected stored name, got %v", profile.Name)
	}
}

func TestDisplayNameFallsBackThroughFields(t *testing.T) {
	name := "Amara"
	username := "amara_k"
	empty := ""

	cases := []struct {
		label   string
		profile *models.Profile
		want    string
	}{
		{"nil profile", nil, "User"},
		{"name set", &models.Profile{Name: &name, Username: &username}, "Amara"},
		{"username only", &models.Profile{Name: &empty, Username: &username}, "amara_k"},
		{"nothing set", &models.Profile{}, "User"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.profile); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.label, tc.want, got)
		}
	}
}
