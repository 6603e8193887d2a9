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

// ChatService covers the regular direct-message threads between connected
// users. Consultation threads live in ConsultationService; the two schemas
// never mix outside the timeline normalization layer.
type ChatService struct {
	db             *pgxpool.Pool
	messageRepo    *repository.MessageRepository
	connectionRepo *repository.ConnectionRepository
	profileRepo    *repository.ProfileRepository
}

type ChatDelivery struct {
	Message     *models.DirectMessage
	RecipientID int64
}

func NewChatService(
	db *pgxpool.Pool,
	messageRepo *repository.MessageRepository,
	connectionRepo *repository.ConnectionRepository,
	profileRepo *repository.ProfileRepository,
) *ChatService {
	return &ChatService{
		db:             db,
		messageRepo:    messageRepo,
		connectionRepo: connectionRepo,
		profileRepo:    profileRepo,
	}
}

func (s *ChatService) ListConversations(ctx context.Context, actorID int64) ([]models.ConversationSummary, error) {
	summaries, err := s.messageRepo.ListConversations(ctx, actorID)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]int64, 0, len(summaries))
	for _, summary := range summaries {
		peerIDs = append(peerIDs, summary.PeerID)
	}
	profiles, err := s.profileRepo.GetManyByUserIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if profile, ok := profiles[summaries[i].PeerID]; ok {
			profileCopy := profile
			summaries[i].Peer = &profileCopy
		} else {
			summaries[i].Peer = FallbackProfile(summaries[i].PeerID)
		}
	}
	return summaries, nil
}

// ListMessages returns the two-party thread and stamps the caller's unread
// messages read in the same transaction, mirroring what opening the screen
// does in the app.
func (s *ChatService) ListMessages(ctx context.Context, actorID, peerID int64) ([]models.DirectMessage, error) {
	if peerID <= 0 || peerID == actorID {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	messages, err := txMessageRepo.ListBetween(ctx, actorID, peerID)
	if err != nil {
		return nil, err
	}
	if err := txMessageRepo.MarkThreadRead(ctx, actorID, peerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	readAt := time.Now().UTC()
	for i := range messages {
		if messages[i].ReceiverID == actorID && messages[i].ReadAt == nil {
			messages[i].ReadAt = &readAt
		}
	}
	return messages, nil
}

func (s *ChatService) SendMessage(ctx context.Context, actorID, peerID int64, content string) (*ChatDelivery, error) {
	if peerID <= 0 || peerID == actorID {
		return nil, ErrInvalidInput
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	connection, err := s.connectionRepo.GetPair(ctx, actorID, peerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	if connection.Status != "accepted" {
		return nil, ErrNotConnected
	}

	message, err := s.messageRepo.Create(ctx, actorID, peerID, trimmed)
	if err != nil {
		return nil, err
	}
	return &ChatDelivery{Message: message, RecipientID: peerID}, nil
}

// MarkMessageRead is the fire-and-forget path used when a delivery reaches a
// subscribed receiver.
func (s *ChatService) MarkMessageRead(ctx context.Context, messageID, readerID int64) error {
	return s.messageRepo.MarkMessageRead(ctx, messageID, readerID)
}

func (s *ChatService) MarkThreadRead(ctx context.Context, readerID, peerID int64) error {
	return s.messageRepo.MarkThreadRead(ctx, readerID, peerID)
}
