package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.conn(ctx).Exec(ctx, query,
		session.ID,
		session.Title,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return persistErr("failed to create session", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	var s domain.Session
	err := r.db.conn(ctx).QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Title,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr("failed to get session", err)
	}
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context, limit int, offset int) ([]domain.Session, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, persistErr("failed to list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, persistErr("failed to scan session", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE sessions SET updated_at = $1 WHERE id = $2`
	tag, err := r.db.conn(ctx).Exec(ctx, query, at, id)
	if err != nil {
		return persistErr("failed to touch session", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to touch session: %w", domain.ErrNotFound)
	}
	return nil
}
