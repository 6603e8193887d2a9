package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultConsultationFee = 15

	sessionStartMessage   = "Consultation session started. You can now chat with each other."
	sessionEndMessage     = "This consultation session has ended. The conversation is now read-only."
	messagePreviewMaxRune = 80
)

const (
	KindRegular      = "regular"
	KindConsultation = "consultation"
)

type ConsultationService struct {
	db               *pgxpool.Pool
	consultationRepo *repository.ConsultationRepository
	chatRepo         *repository.ChatRepository
	archiveRepo      *repository.ArchiveRepository
	coinRepo         *repository.CoinRepository
	profileService   *ProfileService
}

func NewConsultationService(
	db *pgxpool.Pool,
	consultationRepo *repository.ConsultationRepository,
	chatRepo *repository.ChatRepository,
	archiveRepo *repository.ArchiveRepository,
	coinRepo *repository.CoinRepository,
	profileService *ProfileService,
) *ConsultationService {
	return &ConsultationService{
		db:               db,
		consultationRepo: consultationRepo,
		chatRepo:         chatRepo,
		archiveRepo:      archiveRepo,
		coinRepo:         coinRepo,
		profileService:   profileService,
	}
}

type ConsultationDelivery struct {
	Chat        *models.Chat
	Message     *models.ChatMessage
	RecipientID int64
}

// Classify decides whether a conversation identifier names a consultation
// thread or a regular one, by existence of the chat binding.
func (s *ConsultationService) Classify(ctx context.Context, conversationID int64) (string, error) {
	_, err := s.chatRepo.GetByConsultationID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KindRegular, nil
		}
		return "", err
	}
	return KindConsultation, nil
}

// Request creates a pending consultation and debits the professional's fee
// from the client's coin balance. Debit and creation share one transaction,
// so a failure on either side leaves the balance untouched.
func (s *ConsultationService) Request(ctx context.Context, clientID, professionalID int64, scheduledFor *string) (*models.Consultation, error) {
	if professionalID <= 0 || professionalID == clientID {
		return nil, ErrInvalidInput
	}

	professional, err := s.profileService.Resolve(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if !professional.IsDoctor {
		return nil, ErrProfessionalNotFound
	}
	fee := int64(DefaultConsultationFee)
	if professional.ConsultationFee != nil && *professional.ConsultationFee > 0 {
		fee = *professional.ConsultationFee
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txCoinRepo := repository.NewCoinRepository(tx)
	txConsultationRepo := repository.NewConsultationRepository(tx)

	if _, err := txCoinRepo.DebitIfSufficient(ctx, clientID, fee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientCoins
		}
		return nil, err
	}

	consultation, err := txConsultationRepo.Create(ctx, repository.CreateConsultationInput{
		ClientID:       clientID,
		ProfessionalID: professionalID,
		FeePaid:        fee,
		ScheduledFor:   scheduledFor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return consultation, nil
}

// Accept moves a pending consultation to active and binds its chat. The chat
// creation is keyed by consultation id, so a duplicate accept (double tap,
// retry) lands on the existing row and adds no second system message.
func (s *ConsultationService) Accept(ctx context.Context, professionalID, consultationID int64) (*models.Chat, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConsultationRepo := repository.NewConsultationRepository(tx)
	txChatRepo := repository.NewChatRepository(tx)

	consultation, err := txConsultationRepo.GetByIDForUpdate(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if consultation.ProfessionalID != professionalID {
		return nil, ErrForbidden
	}
	switch consultation.Status {
	case models.ConsultationPending:
		if _, err := txConsultationRepo.UpdateStatusIfCurrent(ctx, consultationID, models.ConsultationPending, models.ConsultationActive); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
	case models.ConsultationActive:
		// Duplicate accept; fall through and reuse the chat.
	default:
		return nil, ErrInvalidStateTransition
	}

	client, err := s.profileService.Resolve(ctx, consultation.ClientID)
	if err != nil {
		return nil, err
	}
	professional, err := s.profileService.Resolve(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	chat, created, err := txChatRepo.CreateIfAbsent(ctx, repository.CreateChatInput{
		ConsultationID:   consultationID,
		ClientID:         consultation.ClientID,
		ProfessionalID:   professionalID,
		ClientName:       DisplayName(client),
		ProfessionalName: DisplayName(professional),
	})
	if err != nil {
		return nil, err
	}
	if created {
		if _, err := txChatRepo.InsertMessage(ctx, chat.ID, nil, models.SenderTypeSystem, sessionStartMessage); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return chat, nil
}

// Reject declines a pending consultation and refunds the fee.
func (s *ConsultationService) Reject(ctx context.Context, professionalID, consultationID int64) (*models.Consultation, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConsultationRepo := repository.NewConsultationRepository(tx)
	txCoinRepo := repository.NewCoinRepository(tx)

	consultation, err := txConsultationRepo.GetByIDForUpdate(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if consultation.ProfessionalID != professionalID {
		return nil, ErrForbidden
	}

	rejected, err := txConsultationRepo.UpdateStatusIfCurrent(ctx, consultationID, models.ConsultationPending, models.ConsultationRejected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	if _, err := txCoinRepo.Add(ctx, consultation.ClientID, consultation.FeePaid); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rejected, nil
}

// End archives the session rather than destroying it: the thread is copied to
// the completed tables, the chat flips read-only, and the consultation is
// marked completed. Only the professional may end a session.
func (s *ConsultationService) End(ctx context.Context, professionalID, consultationID int64) (*models.CompletedChat, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConsultationRepo := repository.NewConsultationRepository(tx)
	txChatRepo := repository.NewChatRepository(tx)
	txArchiveRepo := repository.NewArchiveRepository(tx)

	consultation, err := txConsultationRepo.GetByIDForUpdate(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if consultation.ProfessionalID != professionalID {
		return nil, ErrForbidden
	}
	chat, err := txChatRepo.GetByConsultationID(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	if _, err := txChatRepo.InsertMessage(ctx, chat.ID, nil, models.SenderTypeSystem, sessionEndMessage); err != nil {
		return nil, err
	}
	archived, err := txArchiveRepo.ArchiveChat(ctx, chat)
	if err != nil {
		return nil, err
	}
	if err := txChatRepo.SetInactive(ctx, chat.ID); err != nil {
		return nil, err
	}
	if _, err := txConsultationRepo.UpdateStatusIfCurrent(ctx, consultationID, models.ConsultationActive, models.ConsultationCompleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return archived, nil
}

// Delete is the separate destructive action: it removes the consultation, its
// chat, and its messages. Irreversible, so handlers must require explicit
// confirmation before calling it.
func (s *ConsultationService) Delete(ctx context.Context, professionalID, consultationID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConsultationRepo := repository.NewConsultationRepository(tx)
	txChatRepo := repository.NewChatRepository(tx)

	consultation, err := txConsultationRepo.GetByIDForUpdate(ctx, consultationID)
	if err != nil {
		return err
	}
	if consultation.ProfessionalID != professionalID {
		return ErrForbidden
	}

	if err := txChatRepo.DeleteByConsultationID(ctx, consultationID); err != nil {
		return err
	}
	if err := txConsultationRepo.Delete(ctx, consultationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SendMessage persists a consultation message after re-checking both terminal
// signals. The chat flag and the consultation status can lag each other, so
// either one alone is enough to refuse the send. The checks run inside the
// insert transaction, with the consultation row locked, so a send cannot land
// in a chat that End is archiving concurrently: whichever takes the lock
// second sees the other's writes.
func (s *ConsultationService) SendMessage(ctx context.Context, actorID, consultationID int64, message string) (*ConsultationDelivery, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txChatRepo := repository.NewChatRepository(tx)
	txConsultationRepo := repository.NewConsultationRepository(tx)

	consultation, err := txConsultationRepo.GetByIDForUpdate(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	chat, err := txChatRepo.GetByConsultationID(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	senderType, recipientID, ok := chatParty(chat, actorID)
	if !ok {
		return nil, ErrForbidden
	}
	if SessionTerminal(chat, consultation) {
		return nil, ErrSessionEnded
	}

	persisted, err := txChatRepo.InsertMessage(ctx, chat.ID, &actorID, senderType, trimmed)
	if err != nil {
		return nil, err
	}
	preview := messagePreview(trimmed)
	if err := txChatRepo.RecordDelivery(ctx, chat.ID, senderType, preview); err != nil {
		return nil, err
	}
	if err := txConsultationRepo.UpdateLastMessage(ctx, consultationID, preview); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &ConsultationDelivery{
		Chat:        chat,
		Message:     persisted,
		RecipientID: recipientID,
	}, nil
}

// ListMessages returns the consultation thread and resets the caller's unread
// counter in one transaction.
func (s *ConsultationService) ListMessages(ctx context.Context, actorID, consultationID int64) ([]models.ChatMessage, *models.Chat, error) {
	chat, err := s.chatRepo.GetByConsultationID(ctx, consultationID)
	if err != nil {
		return nil, nil, err
	}
	senderType, _, ok := chatParty(chat, actorID)
	if !ok {
		return nil, nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txChatRepo := repository.NewChatRepository(tx)
	messages, err := txChatRepo.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := txChatRepo.MarkMessagesRead(ctx, chat.ID, senderType); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return messages, chat, nil
}

func (s *ConsultationService) MarkRead(ctx context.Context, actorID, consultationID int64) error {
	chat, err := s.chatRepo.GetByConsultationID(ctx, consultationID)
	if err != nil {
		return err
	}
	senderType, _, ok := chatParty(chat, actorID)
	if !ok {
		return ErrForbidden
	}
	return s.chatRepo.MarkMessagesRead(ctx, chat.ID, senderType)
}

func (s *ConsultationService) ListForUser(ctx context.Context, userID int64) ([]models.Consultation, error) {
	return s.consultationRepo.ListForParticipant(ctx, userID)
}

func (s *ConsultationService) ListChats(ctx context.Context, userID int64) ([]models.Chat, error) {
	return s.chatRepo.ListForParticipant(ctx, userID)
}

func (s *ConsultationService) GetChat(ctx context.Context, actorID, consultationID int64) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByConsultationID(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if _, _, ok := chatParty(chat, actorID); !ok {
		return nil, ErrForbidden
	}
	return chat, nil
}

func (s *ConsultationService) ListArchived(ctx context.Context, userID int64) ([]models.CompletedChat, error) {
	return s.archiveRepo.ListForParticipant(ctx, userID)
}

func (s *ConsultationService) ArchivedMessages(ctx context.Context, actorID, completedChatID int64) ([]models.CompletedChatMessage, error) {
	if _, err := s.archiveRepo.GetByIDForParticipant(ctx, completedChatID, actorID); err != nil {
		return nil, err
	}
	return s.archiveRepo.ListMessages(ctx, completedChatID)
}

// SessionTerminal ORs the two independent terminal detectors: the chat's
// is_active flag and the consultation's status. They are not guaranteed to
// agree at any given moment.
func SessionTerminal(chat *models.Chat, consultation *models.Consultation) bool {
	if chat != nil && !chat.IsActive {
		return true
	}
	return consultation != nil && consultation.Terminal()
}

func chatParty(chat *models.Chat, actorID int64) (senderType string, recipientID int64, ok bool) {
	switch actorID {
	case chat.ClientID:
		return models.SenderTypeClient, chat.ProfessionalID, true
	case chat.ProfessionalID:
		return models.SenderTypeProfessional, chat.ClientID, true
	}
	return "", 0, false
}

func messagePreview(message string) string {
	runes := []rune(message)
	if len(runes) <= messagePreviewMaxRune {
		return message
	}
	return string(runes[:messagePreviewMaxRune]) + "…"
}

// FormatChatTimestamp renders timestamps for the realtime wire format.
func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
