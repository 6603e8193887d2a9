package models

import "time"

type DirectMessage struct {
	ID         int64      `json:"id"`
	SenderID   int64      `json:"sender_id"`
	ReceiverID int64      `json:"receiver_id"`
	Content    string     `json:"content"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ConversationSummary struct {
	PeerID      int64          `json:"peer_id"`
	Peer        *Profile       `json:"peer,omitempty"`
	LastMessage *DirectMessage `json:"last_message,omitempty"`
	UnreadCount int            `json:"unread_count"`
}
