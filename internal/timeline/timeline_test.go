package timeline

import (
	"testing"
	"time"
)

func TestReconcileCollapsesPendingEntry(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	list := []Message{
		{ID: "1", SenderID: 2, Content: "hey", CreatedAt: base},
		{ID: "temp-1", Pending: true, SenderID: 7, Content: "hi", CreatedAt: base.Add(time.Second)},
	}

	merged := Reconcile(list, Message{ID: "42", SenderID: 7, Content: "hi", CreatedAt: base.Add(2 * time.Second)})

	if len(merged) != 2 {
		t.Fatalf("expected 2 messages after collapse, got %d", len(merged))
	}
	if merged[1].ID != "42" || merged[1].Pending {
		t.Fatalf("expected confirmed message 42 in place of pending, got %+v", merged[1])
	}
}

func TestReconcileIgnoresDuplicateDelivery(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	list := []Message{
		{ID: "42", SenderID: 7, Content: "hi", CreatedAt: base},
	}

	merged := Reconcile(list, Message{ID: "42", SenderID: 7, Content: "hi", CreatedAt: base})

	if len(merged) != 1 {
		t.Fatalf("expected duplicate delivery to replace in place, got %d entries", len(merged))
	}
}

func TestReconcileDoesNotCollapseDifferentSender(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	list := []Message{
		{ID: "temp-1", Pending: true, SenderID: 7, Content: "hi", CreatedAt: base},
	}

	merged := Reconcile(list, Message{ID: "42", SenderID: 8, Content: "hi", CreatedAt: base.Add(time.Second)})

	if len(merged) != 2 {
		t.Fatalf("expected append for different sender, got %d entries", len(merged))
	}
}

func TestReconcileRestoresCreationOrder(t *testing.T) {
	t1 := time.Date(2026, 2, 10, 12, 0, 1, 0, time.UTC)
	t2 := time.Date(2026, 2, 10, 12, 0, 2, 0, time.UTC)
	t3 := time.Date(2026, 2, 10, 12, 0, 3, 0, time.UTC)

	// Delivered out of order: t3, t1, t2.
	var list []Message
	list = Reconcile(list, Message{ID: "3", SenderID: 1, Content: "third", CreatedAt: t3})
	list = Reconcile(list, Message{ID: "1", SenderID: 2, Content: "first", CreatedAt: t1})
	list = Reconcile(list, Message{ID: "2", SenderID: 1, Content: "second", CreatedAt: t2})

	if list[0].ID != "1" || list[1].ID != "2" || list[2].ID != "3" {
		t.Fatalf("expected ascending creation order, got %q %q %q", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestReconcileBreaksTimestampTiesByID(t *testing.T) {
	ts := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	var list []Message
	list = Reconcile(list, Message{ID: "10", SenderID: 1, Content: "b", CreatedAt: ts})
	list = Reconcile(list, Message{ID: "9", SenderID: 1, Content: "a", CreatedAt: ts})

	if list[0].ID != "9" || list[1].ID != "10" {
		t.Fatalf("expected numeric id tiebreak, got %q then %q", list[0].ID, list[1].ID)
	}
}

func TestRemovePendingOnlyDropsMatchingPending(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	list := []Message{
		{ID: "42", SenderID: 7, Content: "hi", CreatedAt: base},
		{ID: "temp-a", Pending: true, SenderID: 7, Content: "lost", CreatedAt: base.Add(time.Second)},
	}

	out := RemovePending(list, "temp-a")
	if len(out) != 1 || out[0].ID != "42" {
		t.Fatalf("expected only confirmed message to survive, got %+v", out)
	}

	out = RemovePending(out, "42")
	if len(out) != 1 {
		t.Fatalf("confirmed entries must never be removed, got %+v", out)
	}
}

func TestNewPendingUsesTempIdentifier(t *testing.T) {
	message := NewPending(7, 8, "hello")
	if !message.Pending {
		t.Fatal("expected pending flag")
	}
	if len(message.ID) <= len("temp-") || message.ID[:5] != "temp-" {
		t.Fatalf("expected temp- prefixed id, got %q", message.ID)
	}
	if second := NewPending(7, 8, "hello"); second.ID == message.ID {
		t.Fatal("expected unique pending ids")
	}
}
