package models

import "time"

const (
	ConsultationPending   = "pending"
	ConsultationActive    = "active"
	ConsultationCompleted = "completed"
	ConsultationCancelled = "cancelled"
	ConsultationRejected  = "rejected"
)

type Consultation struct {
	ID              int64      `json:"id"`
	ClientID        int64      `json:"client_id"`
	ProfessionalID  int64      `json:"professional_id"`
	Status          string     `json:"status"`
	FeePaid         int64      `json:"fee_paid"`
	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	LastMessage     *string    `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Terminal reports whether the consultation can no longer carry messages.
func (c *Consultation) Terminal() bool {
	switch c.Status {
	case ConsultationCompleted, ConsultationCancelled, ConsultationRejected:
		return true
	}
	return false
}
