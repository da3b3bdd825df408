package sqlite

import (
	"context"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
)

// SuggestionRepository implements domain.SuggestionRepository
type SuggestionRepository struct {
	db *DB
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(db *DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Suggestion, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT id, session_id, title, description, suggestion_index, created_at
		FROM suggestions
		WHERE session_id = ?
		ORDER BY suggestion_index
	`, sessionID.String())
	if err != nil {
		return nil, persistErr("failed to list suggestions", err)
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var (
			s       domain.Suggestion
			created int64
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Title, &s.Description, &s.Index, &created); err != nil {
			return nil, persistErr("failed to scan suggestion", err)
		}
		s.CreatedAt = fromMillis(created)
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list suggestions", err)
	}
	return suggestions, nil
}

func (r *SuggestionRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM suggestions WHERE session_id = ?`, sessionID.String()); err != nil {
		return persistErr("failed to delete suggestions", err)
	}
	return nil
}

func (r *SuggestionRepository) BulkInsert(ctx context.Context, suggestions []domain.Suggestion) error {
	q := r.db.conn(ctx)
	for _, s := range suggestions {
		_, err := q.ExecContext(ctx, `
			INSERT INTO suggestions (id, session_id, title, description, suggestion_index, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, s.ID.String(), s.SessionID.String(), s.Title, s.Description, s.Index, toMillis(s.CreatedAt))
		if err != nil {
			return persistErr("failed to insert suggestion", err)
		}
	}
	return nil
}
