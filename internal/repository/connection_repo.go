package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type ConnectionRepository struct {
	db DBTX
}

func NewConnectionRepository(db DBTX) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

const connectionColumns = `id, requester_id, target_id, status, created_at, updated_at`

func scanConnection(row interface{ Scan(dest ...any) error }) (*models.Connection, error) {
	var connection models.Connection
	err := row.Scan(
		&connection.ID,
		&connection.RequesterID,
		&connection.TargetID,
		&connection.Status,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

// CreateOrGet inserts a pending edge, or returns the existing one when the
// pair is already linked in either direction. The conflict target matches the
// unordered-pair unique index, so B requesting A after A requested B lands on
// the same row instead of opening a second edge.
func (r *ConnectionRepository) CreateOrGet(ctx context.Context, requesterID, targetID int64) (*models.Connection, error) {
	query := `
		INSERT INTO connections (requester_id, target_id, status)
		VALUES ($1, $2, 'pending')
		ON CONFLICT ((LEAST(requester_id, target_id)), (GREATEST(requester_id, target_id)))
		DO UPDATE SET updated_at = connections.updated_at
		RETURNING ` + connectionColumns
	return scanConnection(r.db.QueryRow(ctx, query, requesterID, targetID))
}

func (r *ConnectionRepository) GetPair(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE (requester_id = $1 AND target_id = $2)
		   OR (requester_id = $2 AND target_id = $1)
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanConnection(r.db.QueryRow(ctx, query, userA, userB))
}

func (r *ConnectionRepository) UpdateStatusIfPending(ctx context.Context, connectionID, targetID int64, status string) (*models.Connection, error) {
	query := `
		UPDATE connections
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND target_id = $2 AND status = 'pending'
		RETURNING ` + connectionColumns
	return scanConnection(r.db.QueryRow(ctx, query, connectionID, targetID, status))
}

func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64) ([]models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE requester_id = $1 OR target_id = $1
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	connections := make([]models.Connection, 0)
	for rows.Next() {
		connection, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, *connection)
	}
	return connections, rows.Err()
}
