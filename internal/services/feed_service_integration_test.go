package services

import (
	"context"
	"testing"

	"github.com/almas-cp/Saner-sub000/internal/repository"
)

func newIntegrationFeedService(pool repository.DBTX) *FeedService {
	return NewFeedService(
		repository.NewPostRepository(pool),
		repository.NewConnectionRepository(pool),
		NewProfileService(repository.NewProfileRepository(pool)),
	)
}

func TestConnectionPairIsSingleEdgeAcrossDirections(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationFeedService(pool)

	userA := createTestAccount(t, ctx, pool, false, 0)
	userB := createTestAccount(t, ctx, pool, false, 0)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userA, userB) })

	pending, err := service.RequestConnection(ctx, userA, userB)
	if err != nil {
		t.Fatalf("RequestConnection A->B: %v", err)
	}
	if pending.Status != "pending" {
		t.Fatalf("expected pending edge, got %q", pending.Status)
	}

	accepted, err := service.RespondToConnection(ctx, pending.ID, userB, true)
	if err != nil {
		t.Fatalf("RespondToConnection: %v", err)
	}
	if accepted.Status != "accepted" {
		t.Fatalf("expected accepted edge, got %q", accepted.Status)
	}

	// The reverse-direction request must land on the accepted edge, not open
	// a second pending one that would shadow it.
	reverse, err := service.RequestConnection(ctx, userB, userA)
	if err != nil {
		t.Fatalf("RequestConnection B->A: %v", err)
	}
	if reverse.ID != pending.ID {
		t.Fatalf("expected the existing edge %d, got a new one %d", pending.ID, reverse.ID)
	}
	if reverse.Status != "accepted" {
		t.Fatalf("expected the accepted edge back, got %q", reverse.Status)
	}

	edge, err := service.ConnectionWith(ctx, userB, userA)
	if err != nil {
		t.Fatalf("ConnectionWith: %v", err)
	}
	if edge.ID != pending.ID || edge.Status != "accepted" {
		t.Fatalf("expected the accepted pair edge, got %+v", edge)
	}
}
