package feed

import (
	"context"
	"time"
)

// Change is one row reported by a source poll: something created, updated
// or (when the source keeps a deletion log) deleted since the given mark.
type Change struct {
	ID      int64
	At      time.Time
	Deleted bool
	Summary string
}

// Source is a watched entity collection the broadcaster polls.
type Source interface {
	Name() string
	ChangedSince(ctx context.Context, since time.Time) ([]Change, error)
}

// Update is a single change as it appears on the wire.
type Update struct {
	Type     string `json:"type"`
	EntityID int64  `json:"entityId"`
	Message  string `json:"message"`
}

// Event is one feed message. A tick with a single change is flattened
// (EntityID/Message set, no Updates); multiple changes ride in Updates.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	EntityID  int64     `json:"entityId,omitempty"`
	Message   string    `json:"message,omitempty"`
	Updates   []Update  `json:"updates,omitempty"`
}

const (
	TypeCreated = "created"
	TypeUpdated = "updated"
	TypeDeleted = "deleted"
	TypeBatch   = "update"
)

// NewEvent folds a tick's updates into one wire event.
func NewEvent(at time.Time, updates []Update) Event {
	if len(updates) == 1 {
		u := updates[0]
		return Event{Type: u.Type, Timestamp: at, EntityID: u.EntityID, Message: u.Message}
	}
	return Event{Type: TypeBatch, Timestamp: at, Updates: updates}
}
