package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type ConsultationRepository struct {
	db DBTX
}

func NewConsultationRepository(db DBTX) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

type CreateConsultationInput struct {
	ClientID       int64
	ProfessionalID int64
	FeePaid        int64
	ScheduledFor   *string
}

const consultationColumns = `id, client_id, professional_id, status, fee_paid, scheduled_for, last_message, last_message_time, created_at, updated_at`

func scanConsultation(row interface{ Scan(dest ...any) error }) (*models.Consultation, error) {
	var consultation models.Consultation
	err := row.Scan(
		&consultation.ID,
		&consultation.ClientID,
		&consultation.ProfessionalID,
		&consultation.Status,
		&consultation.FeePaid,
		&consultation.ScheduledFor,
		&consultation.LastMessage,
		&consultation.LastMessageTime,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &consultation, nil
}

func (r *ConsultationRepository) Create(ctx context.Context, input CreateConsultationInput) (*models.Consultation, error) {
	query := `
		INSERT INTO consultations (client_id, professional_id, status, fee_paid, scheduled_for)
		VALUES ($1, $2, 'pending', $3, $4::timestamptz)
		RETURNING ` + consultationColumns
	return scanConsultation(r.db.QueryRow(ctx, query,
		input.ClientID,
		input.ProfessionalID,
		input.FeePaid,
		input.ScheduledFor,
	))
}

func (r *ConsultationRepository) GetByIDForUpdate(ctx context.Context, consultationID int64) (*models.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE id = $1 FOR UPDATE`
	return scanConsultation(r.db.QueryRow(ctx, query, consultationID))
}

// UpdateStatusIfCurrent flips status only when the row still holds the
// expected one; pgx.ErrNoRows signals a lost race or an illegal transition.
func (r *ConsultationRepository) UpdateStatusIfCurrent(ctx context.Context, consultationID int64, currentStatus, nextStatus string) (*models.Consultation, error) {
	query := `
		UPDATE consultations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + consultationColumns
	return scanConsultation(r.db.QueryRow(ctx, query, consultationID, currentStatus, nextStatus))
}

func (r *ConsultationRepository) UpdateLastMessage(ctx context.Context, consultationID int64, preview string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE consultations
		SET last_message = $2, last_message_time = NOW(), updated_at = NOW()
		WHERE id = $1
	`, consultationID, preview)
	return err
}

func (r *ConsultationRepository) ListForParticipant(ctx context.Context, userID int64) ([]models.Consultation, error) {
	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE client_id = $1 OR professional_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	consultations := make([]models.Consultation, 0)
	for rows.Next() {
		consultation, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		consultations = append(consultations, *consultation)
	}
	return consultations, rows.Err()
}

func (r *ConsultationRepository) Delete(ctx context.Context, consultationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM consultations WHERE id = $1`, consultationID)
	return err
}
