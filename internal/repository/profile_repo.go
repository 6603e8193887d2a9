package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, name, username, profile_pic_url, gender, date_of_birth, is_doctor, consultation_fee, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Username,
		&profile.ProfilePicURL,
		&profile.Gender,
		&profile.DateOfBirth,
		&profile.IsDoctor,
		&profile.ConsultationFee,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureExists inserts an empty profile row for the user if one is not there
// yet. Safe to call repeatedly, including under duplicate-signup races.
func (r *ProfileRepository) EnsureExists(ctx context.Context, userID int64, isDoctor bool) error {
	query := `
		INSERT INTO profiles (user_id, is_doctor)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, isDoctor)
	return err
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

type UpdateProfileInput struct {
	Name            *string
	Username        *string
	ProfilePicURL   *string
	Gender          *string
	ConsultationFee *int64
}

func (r *ProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateProfileInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET name = COALESCE($1, name),
			username = COALESCE($2, username),
			profile_pic_url = COALESCE($3, profile_pic_url),
			gender = COALESCE($4, gender),
			consultation_fee = COALESCE($5, consultation_fee),
			updated_at = NOW()
		WHERE user_id = $6
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query,
		req.Name,
		req.Username,
		req.ProfilePicURL,
		req.Gender,
		req.ConsultationFee,
		userID,
	))
}

func (r *ProfileRepository) Search(ctx context.Context, term string, limit int) ([]models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE name ILIKE '%' || $1 || '%' OR username ILIKE '%' || $1 || '%'
		ORDER BY username NULLS LAST, user_id
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) ListProfessionals(ctx context.Context) ([]models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_doctor = TRUE
		ORDER BY name NULLS LAST, user_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) GetManyByUserIDs(ctx context.Context, userIDs []int64) (map[int64]models.Profile, error) {
	profiles := make(map[int64]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[profile.UserID] = *profile
	}
	return profiles, rows.Err()
}
