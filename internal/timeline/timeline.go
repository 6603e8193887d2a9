// Package timeline maintains the in-memory view of a conversation: a list of
// messages that may temporarily contain optimistic (pending) entries created
// before the database confirmed them. Reconcile merges confirmed messages into
// such a list without networks or clocks, so the merge rules are testable on
// their own.
package timeline

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Message is the canonical shape both message schemas normalize into. A
// message is either confirmed (ID is the database id) or pending (ID is a
// local temp- identifier that never leaves the owning connection).
type Message struct {
	ID         string     `json:"id"`
	Pending    bool       `json:"pending,omitempty"`
	SenderID   int64      `json:"sender_id"`
	SenderType string     `json:"sender_type,omitempty"`
	ReceiverID int64      `json:"receiver_id,omitempty"`
	Content    string     `json:"content"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewPending builds the optimistic entry shown before the send resolves.
func NewPending(senderID, receiverID int64, content string) Message {
	return Message{
		ID:         "temp-" + uuid.NewString(),
		Pending:    true,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

// Reconcile merges a confirmed message into the list. An entry with the same
// ID (duplicate delivery) or a pending entry with the same sender and content
// (the send that produced this row) is replaced in place; otherwise the
// message is appended. The result is always re-sorted by creation time, so
// out-of-order delivery cannot scramble the view.
func Reconcile(list []Message, incoming Message) []Message {
	merged := make([]Message, len(list))
	copy(merged, list)

	replaced := false
	for i := range merged {
		if merged[i].ID == incoming.ID {
			merged[i] = incoming
			replaced = true
			break
		}
		if merged[i].Pending &&
			merged[i].SenderID == incoming.SenderID &&
			merged[i].Content == incoming.Content {
			merged[i] = incoming
			replaced = true
			break
		}
	}
	if !replaced {
		merged = append(merged, incoming)
	}

	sortByCreation(merged)
	return merged
}

// RemovePending drops the optimistic entry after a failed send. Confirmed
// entries are never removed here.
func RemovePending(list []Message, localID string) []Message {
	out := make([]Message, 0, len(list))
	for _, message := range list {
		if message.Pending && message.ID == localID {
			continue
		}
		out = append(out, message)
	}
	return out
}

func sortByCreation(list []Message) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return lessID(list[i].ID, list[j].ID)
	})
}

// lessID orders numeric database ids numerically and leaves pending ids
// (non-numeric) after confirmed ones with the same timestamp.
func lessID(a, b string) bool {
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return an < bn
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
