package sqlite

import (
	"context"
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
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID.String(), session.Title, toMillis(session.CreatedAt), toMillis(session.UpdatedAt))
	if err != nil {
		return persistErr("failed to create session", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var (
		s                domain.Session
		created, updated int64
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`, id.String()).Scan(&s.ID, &s.Title, &created, &updated)
	if err != nil {
		return nil, notFoundOr("failed to get session", err)
	}
	s.CreatedAt = fromMillis(created)
	s.UpdatedAt = fromMillis(updated)
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context, limit int, offset int) ([]domain.Session, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, persistErr("failed to list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var (
			s                domain.Session
			created, updated int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &created, &updated); err != nil {
			return nil, persistErr("failed to scan session", err)
		}
		s.CreatedAt = fromMillis(created)
		s.UpdatedAt = fromMillis(updated)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, toMillis(at), id.String())
	if err != nil {
		return persistErr("failed to touch session", err)
	}
	return checkAffected("failed to touch session", res)
}
