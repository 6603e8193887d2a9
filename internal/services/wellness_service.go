package services

import (
	"context"
	"errors"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// Breath sessions shorter than this earn nothing.
	BreathRewardMinSeconds = 10
	BreathRewardCoins      = 10

	MoodValueMin = 1
	MoodValueMax = 5
)

type WellnessService struct {
	db           *pgxpool.Pool
	wellnessRepo *repository.WellnessRepository
	coinRepo     *repository.CoinRepository
}

func NewWellnessService(db *pgxpool.Pool, wellnessRepo *repository.WellnessRepository, coinRepo *repository.CoinRepository) *WellnessService {
	return &WellnessService{db: db, wellnessRepo: wellnessRepo, coinRepo: coinRepo}
}

func (s *WellnessService) LogMood(ctx context.Context, userID int64, value int, note *string) (*models.MoodEntry, error) {
	if value < MoodValueMin || value > MoodValueMax {
		return nil, ErrInvalidInput
	}
	return s.wellnessRepo.CreateMoodEntry(ctx, userID, value, note)
}

func (s *WellnessService) MoodHistory(ctx context.Context, userID int64, limit int) ([]models.MoodEntry, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	return s.wellnessRepo.ListMoodHistory(ctx, userID, limit)
}

// BreathReward is the coin award for a finished session. Pure so the
// threshold behavior can be pinned in tests.
func BreathReward(durationSeconds int) int64 {
	if durationSeconds >= BreathRewardMinSeconds {
		return BreathRewardCoins
	}
	return 0
}

// CompleteBreathSession records the session and credits the reward in one
// transaction. A crash between the two must not mint or drop coins.
func (s *WellnessService) CompleteBreathSession(ctx context.Context, userID int64, pattern string, durationSeconds, cycles int) (*models.BreathSession, error) {
	if durationSeconds < 0 || cycles < 0 || pattern == "" {
		return nil, ErrInvalidInput
	}
	reward := BreathReward(durationSeconds)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWellnessRepo := repository.NewWellnessRepository(tx)
	session, err := txWellnessRepo.CreateBreathSession(ctx, repository.CreateBreathSessionInput{
		UserID:          userID,
		Pattern:         pattern,
		DurationSeconds: durationSeconds,
		Cycles:          cycles,
		CoinsAwarded:    reward,
	})
	if err != nil {
		return nil, err
	}
	if reward > 0 {
		txCoinRepo := repository.NewCoinRepository(tx)
		if _, err := txCoinRepo.Add(ctx, userID, reward); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *WellnessService) BreathHistory(ctx context.Context, userID int64, limit int) ([]models.BreathSession, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	return s.wellnessRepo.ListBreathSessions(ctx, userID, limit)
}

// CoinBalance reads the ledger; a missing row reads as a zero balance rather
// than an error.
func (s *WellnessService) CoinBalance(ctx context.Context, userID int64) (*models.CoinBalance, error) {
	balance, err := s.coinRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.CoinBalance{UserID: userID, Coins: 0}, nil
		}
		return nil, err
	}
	return balance, nil
}
