package repository

import (
	"context"
	"errors"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

type ChatRepository struct {
	db DBTX
}

func NewChatRepository(db DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

type CreateChatInput struct {
	ConsultationID   int64
	ClientID         int64
	ProfessionalID   int64
	ClientName       string
	ProfessionalName string
}

const chatColumns = `id, consultation_id, client_id, professional_id, client_name, professional_name, last_message, last_message_time, unread_client, unread_professional, is_active, created_at`

func scanChat(row interface{ Scan(dest ...any) error }) (*models.Chat, error) {
	var chat models.Chat
	err := row.Scan(
		&chat.ID,
		&chat.ConsultationID,
		&chat.ClientID,
		&chat.ProfessionalID,
		&chat.ClientName,
		&chat.ProfessionalName,
		&chat.LastMessage,
		&chat.LastMessageTime,
		&chat.UnreadClient,
		&chat.UnreadProfessional,
		&chat.IsActive,
		&chat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateIfAbsent creates the chat bound to a consultation exactly once. The
// unique index on consultation_id makes duplicate accepts collapse onto the
// existing row. The second return reports whether this call created the row.
func (r *ChatRepository) CreateIfAbsent(ctx context.Context, input CreateChatInput) (*models.Chat, bool, error) {
	query := `
		INSERT INTO chats (consultation_id, client_id, professional_id, client_name, professional_name, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (consultation_id) DO NOTHING
		RETURNING ` + chatColumns
	chat, err := scanChat(r.db.QueryRow(ctx, query,
		input.ConsultationID,
		input.ClientID,
		input.ProfessionalID,
		input.ClientName,
		input.ProfessionalName,
	))
	if err == nil {
		return chat, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	chat, err = r.GetByConsultationID(ctx, input.ConsultationID)
	return chat, false, err
}

func (r *ChatRepository) GetByID(ctx context.Context, chatID int64) (*models.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1`
	return scanChat(r.db.QueryRow(ctx, query, chatID))
}

func (r *ChatRepository) GetByConsultationID(ctx context.Context, consultationID int64) (*models.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE consultation_id = $1`
	return scanChat(r.db.QueryRow(ctx, query, consultationID))
}

func (r *ChatRepository) GetByIDForParticipant(ctx context.Context, chatID, participantID int64) (*models.Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats
		WHERE id = $1 AND (client_id = $2 OR professional_id = $2)
	`
	return scanChat(r.db.QueryRow(ctx, query, chatID, participantID))
}

func (r *ChatRepository) ListForParticipant(ctx context.Context, userID int64) ([]models.Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats
		WHERE client_id = $1 OR professional_id = $1
		ORDER BY COALESCE(last_message_time, created_at) DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) SetInactive(ctx context.Context, chatID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE chats SET is_active = FALSE WHERE id = $1`, chatID)
	return err
}

func (r *ChatRepository) DeleteByConsultationID(ctx context.Context, consultationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chats WHERE consultation_id = $1`, consultationID)
	return err
}

const chatMessageColumns = `id, chat_id, sender_id, sender_type, message, read, created_at`

func scanChatMessage(row interface{ Scan(dest ...any) error }) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := row.Scan(
		&message.ID,
		&message.ChatID,
		&message.SenderID,
		&message.SenderType,
		&message.Message,
		&message.Read,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *ChatRepository) InsertMessage(ctx context.Context, chatID int64, senderID *int64, senderType, message string) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (chat_id, sender_id, sender_type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + chatMessageColumns
	return scanChatMessage(r.db.QueryRow(ctx, query, chatID, senderID, senderType, message))
}

func (r *ChatRepository) ListMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	query := `
		SELECT ` + chatMessageColumns + `
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		message, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	return messages, rows.Err()
}

// RecordDelivery updates the chat preview and bumps the unread counter of the
// side that did not send. System messages count against both sides' previews
// but neither counter.
func (r *ChatRepository) RecordDelivery(ctx context.Context, chatID int64, senderType, preview string) error {
	var bump string
	switch senderType {
	case models.SenderTypeClient:
		bump = `unread_professional = unread_professional + 1,`
	case models.SenderTypeProfessional:
		bump = `unread_client = unread_client + 1,`
	}
	_, err := r.db.Exec(ctx, `
		UPDATE chats
		SET `+bump+`
			last_message = $2,
			last_message_time = NOW()
		WHERE id = $1
	`, chatID, preview)
	return err
}

// MarkMessagesRead resets the caller's unread counter and flags the other
// side's messages read. userType is "client" or "professional".
func (r *ChatRepository) MarkMessagesRead(ctx context.Context, chatID int64, userType string) error {
	var reset string
	var otherSide string
	switch userType {
	case models.SenderTypeClient:
		reset = `unread_client = 0`
		otherSide = models.SenderTypeProfessional
	case models.SenderTypeProfessional:
		reset = `unread_professional = 0`
		otherSide = models.SenderTypeClient
	default:
		return nil
	}

	if _, err := r.db.Exec(ctx, `UPDATE chats SET `+reset+` WHERE id = $1`, chatID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET read = TRUE
		WHERE chat_id = $1
		  AND sender_type = $2
		  AND read = FALSE
	`, chatID, otherSide)
	return err
}
