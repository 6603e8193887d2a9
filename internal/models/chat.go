package models

import "time"

const (
	SenderTypeClient       = "client"
	SenderTypeProfessional = "professional"
	SenderTypeSystem       = "system"
)

type Chat struct {
	ID                 int64      `json:"id"`
	ConsultationID     int64      `json:"consultation_id"`
	ClientID           int64      `json:"client_id"`
	ProfessionalID     int64      `json:"professional_id"`
	ClientName         string     `json:"client_name"`
	ProfessionalName   string     `json:"professional_name"`
	LastMessage        *string    `json:"last_message,omitempty"`
	LastMessageTime    *time.Time `json:"last_message_time,omitempty"`
	UnreadClient       int        `json:"unread_client"`
	UnreadProfessional int        `json:"unread_professional"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ChatMessage struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id"`
	SenderID   *int64    `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type CompletedChat struct {
	ID               int64     `json:"id"`
	ChatID           int64     `json:"chat_id"`
	ConsultationID   int64     `json:"consultation_id"`
	ClientID         int64     `json:"client_id"`
	ProfessionalID   int64     `json:"professional_id"`
	ClientName       string    `json:"client_name"`
	ProfessionalName string    `json:"professional_name"`
	EndedAt          time.Time `json:"ended_at"`
	CreatedAt        time.Time `json:"created_at"`
}

type CompletedChatMessage struct {
	ID              int64     `json:"id"`
	CompletedChatID int64     `json:"completed_chat_id"`
	SenderID        *int64    `json:"sender_id"`
	SenderType      string    `json:"sender_type"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}
