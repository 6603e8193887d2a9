package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

type stubWellnessService struct {
	moodResult    *models.MoodEntry
	moodErr       error
	moodHistory   []models.MoodEntry
	breathResult  *models.BreathSession
	breathErr     error
	breathHistory []models.BreathSession
	balance       *models.CoinBalance
	balanceErr    error

	lastUserID    int64
	lastMoodValue int
	lastDuration  int
}

func (s *stubWellnessService) LogMood(_ context.Context, userID int64, value int, _ *string) (*models.MoodEntry, error) {
	s.lastUserID = userID
	s.lastMoodValue = value
	return s.moodResult, s.moodErr
}

func (s *stubWellnessService) MoodHistory(_ context.Context, userID int64, _ int) ([]models.MoodEntry, error) {
	s.lastUserID = userID
	return s.moodHistory, nil
}

func (s *stubWellnessService) CompleteBreathSession(_ context.Context, userID int64, _ string, durationSeconds, _ int) (*models.BreathSession, error) {
	s.lastUserID = userID
	s.lastDuration = durationSeconds
	return s.breathResult, s.breathErr
}

func (s *stubWellnessService) BreathHistory(_ context.Context, userID int64, _ int) ([]models.BreathSession, error) {
	s.lastUserID = userID
	return s.breathHistory, nil
}

func (s *stubWellnessService) CoinBalance(_ context.Context, userID int64) (*models.CoinBalance, error) {
	s.lastUserID = userID
	return s.balance, s.balanceErr
}

func wellnessTestApp(service *stubWellnessService) (*fiber.App, *WellnessHandler) {
	handler := &WellnessHandler{wellnessService: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "user")
		return c.Next()
	})
	return app, handler
}

func TestLogMoodReturnsCreatedEntry(t *testing.T) {
	service := &stubWellnessService{
		moodResult: &models.MoodEntry{ID: 5, UserID: 42, Value: 4},
	}
	app, handler := wellnessTestApp(service)
	app.Post("/api/v1/wellness/mood", handler.LogMood)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wellness/mood", strings.NewReader(`{"value": 4, "note": "slept well"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastMoodValue != 4 {
		t.Fatalf("expected mood value 4, got %d", service.lastMoodValue)
	}
}

func TestLogMoodOutOfRangeReturnsBadRequest(t *testing.T) {
	service := &stubWellnessService{moodErr: services.ErrInvalidInput}
	app, handler := wellnessTestApp(service)
	app.Post("/api/v1/wellness/mood", handler.LogMood)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wellness/mood", strings.NewReader(`{"value": 9}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCompleteBreathSessionReportsAwardedCoins(t *testing.T) {
	service := &stubWellnessService{
		breathResult: &models.BreathSession{ID: 3, UserID: 42, Pattern: "box", DurationSeconds: 120, CoinsAwarded: 10},
	}
	app, handler := wellnessTestApp(service)
	app.Post("/api/v1/wellness/breath", handler.CompleteBreathSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wellness/breath", strings.NewReader(`{"pattern": "box", "duration_seconds": 120, "cycles": 8}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body models.BreathSession
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.CoinsAwarded != 10 {
		t.Fatalf("expected 10 coins awarded, got %d", body.CoinsAwarded)
	}
}

func TestCoinBalanceReturnsBalance(t *testing.T) {
	service := &stubWellnessService{
		balance: &models.CoinBalance{UserID: 42, Coins: 65},
	}
	app, handler := wellnessTestApp(service)
	app.Get("/api/v1/wellness/coins", handler.CoinBalance)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/wellness/coins", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body models.CoinBalance
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Coins != 65 {
		t.Fatalf("expected 65 coins, got %d", body.Coins)
	}
}
