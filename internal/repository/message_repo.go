package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, receiver_id, content, read_at, created_at`

func scanDirectMessage(row interface{ Scan(dest ...any) error }) (*models.DirectMessage, error) {
	var message models.DirectMessage
	err := row.Scan(
		&message.ID,
		&message.SenderID,
		&message.ReceiverID,
		&message.Content,
		&message.ReadAt,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) Create(ctx context.Context, senderID, receiverID int64, content string) (*models.DirectMessage, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING ` + messageColumns
	return scanDirectMessage(r.db.QueryRow(ctx, query, senderID, receiverID, content))
}

// ListBetween returns the two-party thread in creation order, either direction.
func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB int64) ([]models.DirectMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.DirectMessage, 0)
	for rows.Next() {
		message, err := scanDirectMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	return messages, rows.Err()
}

// MarkThreadRead stamps read_at on every unread message the reader received
// from the peer. The null check keeps the transition one-way.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, readerID, peerID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET read_at = NOW()
		WHERE receiver_id = $1
		  AND sender_id = $2
		  AND read_at IS NULL
	`, readerID, peerID)
	return err
}

func (r *MessageRepository) MarkMessageRead(ctx context.Context, messageID, readerID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET read_at = NOW()
		WHERE id = $1
		  AND receiver_id = $2
		  AND read_at IS NULL
	`, messageID, readerID)
	return err
}

// ListConversations collapses the message table into one row per peer, newest
// message first, with the caller's unread count per peer.
func (r *MessageRepository) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	query := `
		SELECT DISTINCT ON (peer_id)
			peer_id, id, sender_id, receiver_id, content, read_at, created_at
		FROM (
			SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id,
				   id, sender_id, receiver_id, content, read_at, created_at
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		) threads
		ORDER BY peer_id, created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var message models.DirectMessage
		if err := rows.Scan(
			&summary.PeerID,
			&message.ID,
			&message.SenderID,
			&message.ReceiverID,
			&message.Content,
			&message.ReadAt,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		summary.LastMessage = &message
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unread, err := r.unreadByPeer(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].UnreadCount = unread[summaries[i].PeerID]
	}
	return summaries, nil
}

func (r *MessageRepository) unreadByPeer(ctx context.Context, userID int64) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND read_at IS NULL
		GROUP BY sender_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var peerID int64
		var count int
		if err := rows.Scan(&peerID, &count); err != nil {
			return nil, err
		}
		counts[peerID] = count
	}
	return counts, rows.Err()
}
