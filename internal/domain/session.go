package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is used when a session is created without a title
const DefaultSessionTitle = "New session"

// Session represents one pain-mapping conversation
type Session struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionView is a session together with its current pain points
type SessionView struct {
	Session
	PainPoints []PainPoint `json:"pain_points"`
}

// SessionDetail is the full state of a session as shown by the UI
type SessionDetail struct {
	SessionView
	History     []HistorySlot `json:"history"`
	Suggestions []Suggestion  `json:"suggestions"`
}

// SessionCreate represents session creation data
type SessionCreate struct {
	Title string `json:"title" validate:"max=255"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	List(ctx context.Context, limit int, offset int) ([]Session, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Transactor runs fn inside a single persistence transaction. Repositories
// called with the context passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
