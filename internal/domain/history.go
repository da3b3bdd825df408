package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistorySlot is the append-only record of one processed user message
type HistorySlot struct {
	ID          uuid.UUID   `json:"id"`
	SessionID   uuid.UUID   `json:"session_id"`
	Index       int         `json:"index"`
	UserMessage string      `json:"user_message"`
	PainPoints  []PainPoint `json:"pain_points"`
	Notes       *string     `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// HistorySlotCreate represents a manually recorded history entry
type HistorySlotCreate struct {
	UserMessage string  `json:"user_message" validate:"required,max=4000"`
	Notes       *string `json:"notes,omitempty"`
}

// LatestNotes returns the notes of the most recent slot, if it has any.
// slots must be ordered by index.
func LatestNotes(slots []HistorySlot) (string, bool) {
	if len(slots) == 0 {
		return "", false
	}
	last := slots[len(slots)-1]
	if last.Notes == nil || *last.Notes == "" {
		return "", false
	}
	return *last.Notes, true
}

// HistoryRepository defines the interface for history storage
type HistoryRepository interface {
	// ListBySession returns slots ordered by index
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]HistorySlot, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)
	Insert(ctx context.Context, slot *HistorySlot) error
}
