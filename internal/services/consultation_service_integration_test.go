package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/almas-cp/Saner-sub000/internal/models"
	"github.com/almas-cp/Saner-sub000/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestConsultationLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationConsultationService(pool)
	coinRepo := repository.NewCoinRepository(pool)

	clientID := createTestAccount(t, ctx, pool, false, 0)
	professionalID := createTestAccount(t, ctx, pool, true, 20)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientID, professionalID) })

	if _, err := coinRepo.Add(ctx, clientID, 100); err != nil {
		t.Fatalf("fund client: %v", err)
	}

	consultation, err := service.Request(ctx, clientID, professionalID, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if consultation.Status != models.ConsultationPending {
		t.Fatalf("expected pending consultation, got %q", consultation.Status)
	}
	if consultation.FeePaid != 20 {
		t.Fatalf("expected fee 20 from the professional's profile, got %d", consultation.FeePaid)
	}

	balance, err := coinRepo.Get(ctx, clientID)
	if err != nil {
		t.Fatalf("Get balance: %v", err)
	}
	if balance.Coins != 80 {
		t.Fatalf("expected 80 coins after debit, got %d", balance.Coins)
	}

	chat, err := service.Accept(ctx, professionalID, consultation.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !chat.IsActive {
		t.Fatal("expected an active chat after accept")
	}

	delivery, err := service.SendMessage(ctx, clientID, consultation.ID, "I have been feeling anxious lately")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if delivery.RecipientID != professionalID {
		t.Fatalf("expected recipient %d, got %d", professionalID, delivery.RecipientID)
	}

	archived, err := service.End(ctx, professionalID, consultation.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if archived.ConsultationID != consultation.ID {
		t.Fatalf("expected archive for consultation %d, got %d", consultation.ID, archived.ConsultationID)
	}

	if _, err := service.SendMessage(ctx, clientID, consultation.ID, "one more thing"); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded after end, got %v", err)
	}

	messages, err := service.ArchivedMessages(ctx, clientID, archived.ID)
	if err != nil {
		t.Fatalf("ArchivedMessages: %v", err)
	}
	var sawClientMessage bool
	for _, message := range messages {
		if message.SenderType == models.SenderTypeClient {
			sawClientMessage = true
		}
		if message.Message == "one more thing" {
			t.Fatal("refused send must not reach the archive")
		}
	}
	if !sawClientMessage {
		t.Fatalf("expected the client message in the archive, got %+v", messages)
	}

	live, _, err := service.ListMessages(ctx, clientID, consultation.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	for _, message := range live {
		if message.Message == "one more thing" {
			t.Fatal("refused send must not persist in the ended chat")
		}
	}
}

func TestAcceptConsultationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationConsultationService(pool)
	coinRepo := repository.NewCoinRepository(pool)
	chatRepo := repository.NewChatRepository(pool)

	clientID := createTestAccount(t, ctx, pool, false, 0)
	professionalID := createTestAccount(t, ctx, pool, true, 0)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientID, professionalID) })

	if _, err := coinRepo.Add(ctx, clientID, 50); err != nil {
		t.Fatalf("fund client: %v", err)
	}

	consultation, err := service.Request(ctx, clientID, professionalID, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	first, err := service.Accept(ctx, professionalID, consultation.ID)
	if err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	second, err := service.Accept(ctx, professionalID, consultation.ID)
	if err != nil {
		t.Fatalf("second Accept: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected both accepts to land on chat %d, got %d", first.ID, second.ID)
	}

	messages, err := chatRepo.ListMessages(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	var systemMessages int
	for _, message := range messages {
		if message.SenderType == models.SenderTypeSystem {
			systemMessages++
		}
	}
	if systemMessages != 1 {
		t.Fatalf("expected exactly one session start message, got %d", systemMessages)
	}
}

func TestRejectConsultationRefundsFee(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationConsultationService(pool)
	coinRepo := repository.NewCoinRepository(pool)

	clientID := createTestAccount(t, ctx, pool, false, 0)
	professionalID := createTestAccount(t, ctx, pool, true, 25)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientID, professionalID) })

	if _, err := coinRepo.Add(ctx, clientID, 30); err != nil {
		t.Fatalf("fund client: %v", err)
	}

	consultation, err := service.Request(ctx, clientID, professionalID, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	rejected, err := service.Reject(ctx, professionalID, consultation.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.ConsultationRejected {
		t.Fatalf("expected rejected status, got %q", rejected.Status)
	}

	balance, err := coinRepo.Get(ctx, clientID)
	if err != nil {
		t.Fatalf("Get balance: %v", err)
	}
	if balance.Coins != 30 {
		t.Fatalf("expected full refund back to 30 coins, got %d", balance.Coins)
	}
}

func TestRequestConsultationWithoutCoinsFails(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationConsultationService(pool)

	clientID := createTestAccount(t, ctx, pool, false, 0)
	professionalID := createTestAccount(t, ctx, pool, true, 0)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientID, professionalID) })

	if _, err := service.Request(ctx, clientID, professionalID, nil); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("expected ErrInsufficientCoins, got %v", err)
	}
}

func TestBreathSessionAwardsCoinsOnce(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	coinRepo := repository.NewCoinRepository(pool)
	service := NewWellnessService(pool, repository.NewWellnessRepository(pool), coinRepo)

	userID := createTestAccount(t, ctx, pool, false, 0)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	session, err := service.CompleteBreathSession(ctx, userID, "box", 120, 8)
	if err != nil {
		t.Fatalf("CompleteBreathSession: %v", err)
	}
	if session.CoinsAwarded != BreathRewardCoins {
		t.Fatalf("expected %d coins awarded, got %d", BreathRewardCoins, session.CoinsAwarded)
	}

	short, err := service.CompleteBreathSession(ctx, userID, "box", 5, 1)
	if err != nil {
		t.Fatalf("CompleteBreathSession short: %v", err)
	}
	if short.CoinsAwarded != 0 {
		t.Fatalf("expected no coins for a session under the threshold, got %d", short.CoinsAwarded)
	}

	balance, err := coinRepo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get balance: %v", err)
	}
	if balance.Coins != BreathRewardCoins {
		t.Fatalf("expected balance %d, got %d", BreathRewardCoins, balance.Coins)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationConsultationService(pool *pgxpool.Pool) *ConsultationService {
	return NewConsultationService(
		pool,
		repository.NewConsultationRepository(pool),
		repository.NewChatRepository(pool),
		repository.NewArchiveRepository(pool),
		repository.NewCoinRepository(pool),
		NewProfileService(repository.NewProfileRepository(pool)),
	)
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool, isDoctor bool, consultationFee int64) int64 {
	t.Helper()

	role := "user"
	if isDoctor {
		role = "doctor"
	}

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("consultation-test-%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Role:         role,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", role, err)
	}

	profileRepo := repository.NewProfileRepository(pool)
	if err := profileRepo.EnsureExists(ctx, user.ID, isDoctor); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}

	name := fmt.Sprintf("Test %s %d", role, user.ID)
	input := repository.UpdateProfileInput{Name: &name}
	if consultationFee > 0 {
		input.ConsultationFee = &consultationFee
	}
	if _, err := profileRepo.UpdatePartial(ctx, user.ID, input); err != nil {
		t.Fatalf("UpdatePartial: %v", err)
	}

	return user.ID
}

func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	// Everything else hangs off users with ON DELETE CASCADE.
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
