package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type ArchiveRepository struct {
	db DBTX
}

func NewArchiveRepository(db DBTX) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const completedChatColumns = `id, chat_id, consultation_id, client_id, professional_id, client_name, professional_name, ended_at, created_at`

func scanCompletedChat(row interface{ Scan(dest ...any) error }) (*models.CompletedChat, error) {
	var chat models.CompletedChat
	err := row.Scan(
		&chat.ID,
		&chat.ChatID,
		&chat.ConsultationID,
		&chat.ClientID,
		&chat.ProfessionalID,
		&chat.ClientName,
		&chat.ProfessionalName,
		&chat.EndedAt,
		&chat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ArchiveChat freezes a chat: one completed_chats row plus a bulk copy of the
// thread. Runs inside the caller's transaction so the flip to read-only and
// the copy land together.
func (r *ArchiveRepository) ArchiveChat(ctx context.Context, chat *models.Chat) (*models.CompletedChat, error) {
	query := `
		INSERT INTO completed_chats (chat_id, consultation_id, client_id, professional_id, client_name, professional_name, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + completedChatColumns
	archived, err := scanCompletedChat(r.db.QueryRow(ctx, query,
		chat.ID,
		chat.ConsultationID,
		chat.ClientID,
		chat.ProfessionalID,
		chat.ClientName,
		chat.ProfessionalName,
	))
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO completed_chat_messages (completed_chat_id, sender_id, sender_type, message, created_at)
		SELECT $1, sender_id, sender_type, message, created_at
		FROM chat_messages
		WHERE chat_id = $2
		ORDER BY created_at ASC, id ASC
	`, archived.ID, chat.ID)
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (r *ArchiveRepository) GetByIDForParticipant(ctx context.Context, completedChatID, participantID int64) (*models.CompletedChat, error) {
	query := `
		SELECT ` + completedChatColumns + `
		FROM completed_chats
		WHERE id = $1 AND (client_id = $2 OR professional_id = $2)
	`
	return scanCompletedChat(r.db.QueryRow(ctx, query, completedChatID, participantID))
}

func (r *ArchiveRepository) ListForParticipant(ctx context.Context, userID int64) ([]models.CompletedChat, error) {
	query := `
		SELECT ` + completedChatColumns + `
		FROM completed_chats
		WHERE client_id = $1 OR professional_id = $1
		ORDER BY ended_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]models.CompletedChat, 0)
	for rows.Next() {
		chat, err := scanCompletedChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

func (r *ArchiveRepository) ListMessages(ctx context.Context, completedChatID int64) ([]models.CompletedChatMessage, error) {
	query := `
		SELECT id, completed_chat_id, sender_id, sender_type, message, created_at
		FROM completed_chat_messages
		WHERE completed_chat_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, completedChatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.CompletedChatMessage, 0)
	for rows.Next() {
		var message models.CompletedChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.CompletedChatID,
			&message.SenderID,
			&message.SenderType,
			&message.Message,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
