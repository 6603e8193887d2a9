package chatws

import "github.com/almas-cp/Saner-sub000/internal/timeline"

// view is the per-connection timeline of one subscribed scope. Only the write
// pump touches it, so no locking.
type view struct {
	entries []timeline.Message
}

func newView(initial []timeline.Message) *view {
	entries := make([]timeline.Message, len(initial))
	copy(entries, initial)
	return &view{entries: entries}
}

func (v *view) addPending(entry timeline.Message) {
	v.entries = timeline.Reconcile(v.entries, entry)
}

// apply merges a confirmed message and reports which pending entry it
// collapsed, if any. The caller echoes that local id so the sender's UI can
// swap the optimistic entry for the confirmed one.
func (v *view) apply(confirmed timeline.Message) (collapsedID string) {
	for _, entry := range v.entries {
		if entry.ID == confirmed.ID {
			break
		}
		if entry.Pending && entry.SenderID == confirmed.SenderID && entry.Content == confirmed.Content {
			collapsedID = entry.ID
			break
		}
	}
	v.entries = timeline.Reconcile(v.entries, confirmed)
	return collapsedID
}

func (v *view) removePending(localID string) {
	v.entries = timeline.RemovePending(v.entries, localID)
}

func (v *view) snapshot() []timeline.Message {
	out := make([]timeline.Message, len(v.entries))
	copy(out, v.entries)
	return out
}
