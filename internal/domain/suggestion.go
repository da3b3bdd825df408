package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxSuggestions bounds a single refresh
const MaxSuggestions = 4

// Suggestion is a follow-up question proposed to the user
type Suggestion struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Index       int       `json:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

// SuggestionRepository defines the interface for suggestion storage
type SuggestionRepository interface {
	// ListBySession returns suggestions ordered by index
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Suggestion, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
	BulkInsert(ctx context.Context, suggestions []Suggestion) error
}
