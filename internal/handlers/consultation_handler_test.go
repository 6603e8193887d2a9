package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/services"
)

type stubConsultationService struct {
	requestResult   *models.Consultation
	requestErr      error
	acceptResult    *models.Chat
	acceptErr       error
	rejectResult    *models.Consultation
	rejectErr       error
	endResult       *models.CompletedChat
	endErr          error
	deleteErr       error
	sendResult      *services.ConsultationDelivery
	sendErr         error
	listMsgsResult  []models.ChatMessage
	listMsgsChat    *models.Chat
	listMsgsErr     error
	markReadErr     error
	listResult      []models.Consultation
	listErr         error
	listChatsResult []models.Chat
	listChatsErr    error
	getChatResult   *models.Chat
	getChatErr      error
	archivedResult  []models.CompletedChat
	archivedErr     error
	archivedMsgs    []models.CompletedChatMessage
	archivedMsgsErr error

	lastActorID        int64
	lastConsultationID int64
	lastProfessionalID int64
	lastContent        string
}

func (s *stubConsultationService) Request(_ context.Context, clientID, professionalID int64, _ *string) (*models.Consultation, error) {
	s.lastActorID = clientID
	s.lastProfessionalID = professionalID
	return s.requestResult, s.requestErr
}

func (s *stubConsultationService) Accept(_ context.Context, professionalID, consultationID int64) (*models.Chat, error) {
	s.lastActorID = professionalID
	s.lastConsultationID = consultationID
	return s.acceptResult, s.acceptErr
}

func (s *stubConsultationService) Reject(_ context.Context, professionalID, consultationID int64) (*models.Consultation, error) {
	s.lastActorID = professionalID
	s.lastConsultationID = consultationID
	return s.rejectResult, s.rejectErr
}

func (s *stubConsultationService) End(_ context.Context, professionalID, consultationID int64) (*models.CompletedChat, error) {
	s.lastActorID = professionalID
	s.lastConsultationID = consultationID
	return s.endResult, s.endErr
}

func (s *stubConsultationService) Delete(_ context.Context, professionalID, consultationID int64) error {
	s.lastActorID = professionalID
	s.lastConsultationID = consultationID
	return s.deleteErr
}

func (s *stubConsultationService) SendMessage(_ context.Context, actorID, consultationID int64, message string) (*services.ConsultationDelivery, error) {
	s.lastActorID = actorID
	s.lastConsultationID = consultationID
	s.lastContent = message
	return s.sendResult, s.sendErr
}

func (s *stubConsultationService) ListMessages(_ context.Context, actorID, consultationID int64) ([]models.ChatMessage, *models.Chat, error) {
	s.lastActorID = actorID
	s.lastConsultationID = consultationID
	return s.listMsgsResult, s.listMsgsChat, s.listMsgsErr
}

func (s *stubConsultationService) MarkRead(_ context.Context, actorID, consultationID int64) error {
	s.lastActorID = actorID
	s.lastConsultationID = consultationID
	return s.markReadErr
}

func (s *stubConsultationService) ListForUser(_ context.Context, userID int64) ([]models.Consultation, error) {
	s.lastActorID = userID
	return s.listResult, s.listErr
}

func (s *stubConsultationService) ListChats(_ context.Context, userID int64) ([]models.Chat, error) {
	s.lastActorID = userID
	return s.listChatsResult, s.listChatsErr
}

func (s *stubConsultationService) GetChat(_ context.Context, actorID, consultationID int64) (*models.Chat, error) {
	s.lastActorID = actorID
	s.lastConsultationID = consultationID
	return s.getChatResult, s.getChatErr
}

func (s *stubConsultationService) ListArchived(_ context.Context, userID int64) ([]models.CompletedChat, error) {
	s.lastActorID = userID
	return s.archivedResult, s.archivedErr
}

func (s *stubConsultationService) ArchivedMessages(_ context.Context, actorID, completedChatID int64) ([]models.CompletedChatMessage, error) {
	s.lastActorID = actorID
	s.lastConsultationID = completedChatID
	return s.archivedMsgs, s.archivedMsgsErr
}

func consultationTestApp(service *stubConsultationService, userID, role string) (*fiber.App, *ConsultationHandler) {
	handler := &ConsultationHandler{consultationService: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	})
	return app, handler
}

func TestRequestConsultationReturnsCreated(t *testing.T) {
	service := &stubConsultationService{
		requestResult: &models.Consultation{
			ID:             31,
			ClientID:       42,
			ProfessionalID: 7,
			Status:         models.ConsultationPending,
			FeePaid:        15,
		},
	}
	app, handler := consultationTestApp(service, "42", "user")
	app.Post("/api/v1/consultations", handler.Request)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations", strings.NewReader(`{"professional_id": 7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("expected actor id 42, got %d", service.lastActorID)
	}
	if service.lastProfessionalID != 7 {
		t.Fatalf("expected professional id 7, got %d", service.lastProfessionalID)
	}

	var body models.Consultation
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != models.ConsultationPending {
		t.Fatalf("expected pending status, got %q", body.Status)
	}
}

func TestRequestConsultationWithoutCoinsReturnsPaymentRequired(t *testing.T) {
	service := &stubConsultationService{requestErr: services.ErrInsufficientCoins}
	app, handler := consultationTestApp(service, "42", "user")
	app.Post("/api/v1/consultations", handler.Request)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations", strings.NewReader(`{"professional_id": 7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
}

func TestAcceptConsultationReturnsChat(t *testing.T) {
	service := &stubConsultationService{
		acceptResult: &models.Chat{
			ID:             11,
			ConsultationID: 31,
			ClientID:       42,
			ProfessionalID: 7,
			IsActive:       true,
		},
	}
	app, handler := consultationTestApp(service, "7", "doctor")
	app.Post("/api/v1/consultations/:id/accept", handler.Accept)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/31/accept", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 7 {
		t.Fatalf("expected actor id 7, got %d", service.lastActorID)
	}
	if service.lastConsultationID != 31 {
		t.Fatalf("expected consultation id 31, got %d", service.lastConsultationID)
	}

	var body models.Chat
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.IsActive {
		t.Fatal("expected active chat")
	}
}

func TestAcceptConsultationByNonProfessionalReturnsForbidden(t *testing.T) {
	service := &stubConsultationService{acceptErr: services.ErrForbidden}
	app, handler := consultationTestApp(service, "42", "user")
	app.Post("/api/v1/consultations/:id/accept", handler.Accept)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/31/accept", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRejectConsultationInWrongStateReturnsConflict(t *testing.T) {
	service := &stubConsultationService{rejectErr: services.ErrInvalidStateTransition}
	app, handler := consultationTestApp(service, "7", "doctor")
	app.Post("/api/v1/consultations/:id/reject", handler.Reject)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/31/reject", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestSendConsultationMessageAfterEndReturnsConflict(t *testing.T) {
	service := &stubConsultationService{sendErr: services.ErrSessionEnded}
	app, handler := consultationTestApp(service, "42", "user")
	app.Post("/api/v1/consultations/:id/messages", handler.Send)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/31/messages", strings.NewReader(`{"content": "hello?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastContent != "hello?" {
		t.Fatalf("expected content to reach the service, got %q", service.lastContent)
	}
}

func TestSendConsultationMessageReturnsCreatedMessage(t *testing.T) {
	service := &stubConsultationService{
		sendResult: &services.ConsultationDelivery{
			Chat:        &models.Chat{ID: 11, ConsultationID: 31},
			Message:     &models.ChatMessage{ID: 501, ChatID: 11, SenderType: models.SenderTypeClient, Message: "how are you"},
			RecipientID: 7,
		},
	}
	app, handler := consultationTestApp(service, "42", "user")
	app.Post("/api/v1/consultations/:id/messages", handler.Send)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/31/messages", strings.NewReader(`{"content": "how are you"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body models.ChatMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != 501 {
		t.Fatalf("expected message id 501, got %d", body.ID)
	}
}

func TestGetMissingConsultationChatReturnsNotFound(t *testing.T) {
	service := &stubConsultationService{getChatErr: pgx.ErrNoRows}
	app, handler := consultationTestApp(service, "42", "user")
	app.Get("/api/v1/consultations/:id/chat", handler.GetChat)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/consultations/31/chat", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestConsultationErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return consultationError(c, errors.New("connection reset"), "Failed to accept consultation")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
