package repository

import (
	"context"

	"github.com/almas-cp/Saner-sub000/internal/models"
)

type CoinRepository struct {
	db DBTX
}

func NewCoinRepository(db DBTX) *CoinRepository {
	return &CoinRepository{db: db}
}

func (r *CoinRepository) Get(ctx context.Context, userID int64) (*models.CoinBalance, error) {
	var balance models.CoinBalance
	err := r.db.QueryRow(ctx, `
		SELECT user_id, coins, updated_at
		FROM user_coins
		WHERE user_id = $1
	`, userID).Scan(&balance.UserID, &balance.Coins, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// Add credits coins in a single statement. The upsert makes the increment
// atomic, so concurrent awards to the same user cannot lose an update.
func (r *CoinRepository) Add(ctx context.Context, userID, amount int64) (*models.CoinBalance, error) {
	var balance models.CoinBalance
	err := r.db.QueryRow(ctx, `
		INSERT INTO user_coins (user_id, coins)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET coins = user_coins.coins + EXCLUDED.coins, updated_at = NOW()
		RETURNING user_id, coins, updated_at
	`, userID, amount).Scan(&balance.UserID, &balance.Coins, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// DebitIfSufficient subtracts amount only when the balance covers it.
// pgx.ErrNoRows means the user has no ledger row or not enough coins.
func (r *CoinRepository) DebitIfSufficient(ctx context.Context, userID, amount int64) (*models.CoinBalance, error) {
	var balance models.CoinBalance
	err := r.db.QueryRow(ctx, `
		UPDATE user_coins
		SET coins = coins - $2, updated_at = NOW()
		WHERE user_id = $1 AND coins >= $2
		RETURNING user_id, coins, updated_at
	`, userID, amount).Scan(&balance.UserID, &balance.Coins, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
