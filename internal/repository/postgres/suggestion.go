package postgres

import (
	"context"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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
	query := `
		SELECT id, session_id, title, description, suggestion_index, created_at
		FROM suggestions
		WHERE session_id = $1
		ORDER BY suggestion_index
	`
	rows, err := r.db.conn(ctx).Query(ctx, query, sessionID)
	if err != nil {
		return nil, persistErr("failed to list suggestions", err)
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(
			&s.ID,
			&s.SessionID,
			&s.Title,
			&s.Description,
			&s.Index,
			&s.CreatedAt,
		); err != nil {
			return nil, persistErr("failed to scan suggestion", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list suggestions", err)
	}
	return suggestions, nil
}

func (r *SuggestionRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, `DELETE FROM suggestions WHERE session_id = $1`, sessionID)
	if err != nil {
		return persistErr("failed to delete suggestions", err)
	}
	return nil
}

func (r *SuggestionRepository) BulkInsert(ctx context.Context, suggestions []domain.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range suggestions {
		batch.Queue(`
			INSERT INTO suggestions (id, session_id, title, description, suggestion_index, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, s.SessionID, s.Title, s.Description, s.Index, s.CreatedAt)
	}

	br := r.db.conn(ctx).SendBatch(ctx, batch)
	defer br.Close()

	for range suggestions {
		if _, err := br.Exec(); err != nil {
			return persistErr("failed to insert suggestion", err)
		}
	}
	return nil
}
