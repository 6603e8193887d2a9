package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type WellnessRepository struct {
	db DBTX
}

func NewWellnessRepository(db DBTX) *WellnessRepository {
	return &WellnessRepository{db: db}
}

func (r *WellnessRepository) CreateMoodEntry(ctx context.Context, userID int64, value int, note *string) (*models.MoodEntry, error) {
	var entry models.MoodEntry
	err := r.db.QueryRow(ctx, `
		INSERT INTO mood_entries (user_id, value, note)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, value, note, created_at
	`, userID, value, note).Scan(&entry.ID, &entry.UserID, &entry.Value, &entry.Note, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *WellnessRepository) ListMoodHistory(ctx context.Context, userID int64, limit int) ([]models.MoodEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, value, note, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.MoodEntry, 0)
	for rows.Next() {
		var entry models.MoodEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Value, &entry.Note, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type CreateBreathSessionInput struct {
	UserID          int64
	Pattern         string
	DurationSeconds int
	Cycles          int
	CoinsAwarded    int64
}

func (r *WellnessRepository) CreateBreathSession(ctx context.Context, input CreateBreathSessionInput) (*models.BreathSession, error) {
	var session models.BreathSession
	err := r.db.QueryRow(ctx, `
		INSERT INTO breath_sessions (user_id, pattern, duration_seconds, cycles, coins_awarded)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, pattern, duration_seconds, cycles, coins_awarded, created_at
	`,
		input.UserID,
		input.Pattern,
		input.DurationSeconds,
		input.Cycles,
		input.CoinsAwarded,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.Pattern,
		&session.DurationSeconds,
		&session.Cycles,
		&session.CoinsAwarded,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *WellnessRepository) ListBreathSessions(ctx context.Context, userID int64, limit int) ([]models.BreathSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, pattern, duration_seconds, cycles, coins_awarded, created_at
		FROM breath_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.BreathSession, 0)
	for rows.Next() {
		var session models.BreathSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Pattern,
			&session.DurationSeconds,
			&session.Cycles,
			&session.CoinsAwarded,
			&session.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
