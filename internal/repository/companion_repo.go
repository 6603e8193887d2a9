package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type CompanionRepository struct {
	db DBTX
}

func NewCompanionRepository(db DBTX) *CompanionRepository {
	return &CompanionRepository{db: db}
}

func (r *CompanionRepository) InsertMessage(ctx context.Context, userID int64, role, content string) (*models.CompanionMessage, error) {
	var message models.CompanionMessage
	err := r.db.QueryRow(ctx, `
		INSERT INTO wall_e_chats (user_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, role, content, created_at
	`, userID, role, content).Scan(
		&message.ID,
		&message.UserID,
		&message.Role,
		&message.Content,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *CompanionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.CompanionMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM (
			SELECT id, user_id, role, content, created_at
			FROM wall_e_chats
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.CompanionMessage, 0)
	for rows.Next() {
		var message models.CompanionMessage
		if err := rows.Scan(
			&message.ID,
			&message.UserID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
