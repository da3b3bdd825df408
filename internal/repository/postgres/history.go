package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
)

// HistoryRepository implements domain.HistoryRepository
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.HistorySlot, error) {
	query := `
		SELECT id, session_id, slot_index, user_message, pain_points, notes, created_at
		FROM history_slots
		WHERE session_id = $1
		ORDER BY slot_index
	`
	rows, err := r.db.conn(ctx).Query(ctx, query, sessionID)
	if err != nil {
		return nil, persistErr("failed to list history", err)
	}
	defer rows.Close()

	slots := []domain.HistorySlot{}
	for rows.Next() {
		var (
			s        domain.HistorySlot
			snapshot []byte
		)
		if err := rows.Scan(
			&s.ID,
			&s.SessionID,
			&s.Index,
			&s.UserMessage,
			&snapshot,
			&s.Notes,
			&s.CreatedAt,
		); err != nil {
			return nil, persistErr("failed to scan history slot", err)
		}
		if err := json.Unmarshal(snapshot, &s.PainPoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history snapshot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list history", err)
	}
	return slots, nil
}

func (r *HistoryRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM history_slots WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, persistErr("failed to count history", err)
	}
	return n, nil
}

func (r *HistoryRepository) Insert(ctx context.Context, slot *domain.HistorySlot) error {
	points := slot.PainPoints
	if points == nil {
		points = []domain.PainPoint{}
	}
	snapshot, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal history snapshot: %w", err)
	}

	query := `
		INSERT INTO history_slots (id, session_id, slot_index, user_message, pain_points, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.conn(ctx).Exec(ctx, query,
		slot.ID,
		slot.SessionID,
		slot.Index,
		slot.UserMessage,
		snapshot,
		slot.Notes,
		slot.CreatedAt,
	)
	if err != nil {
		return persistErr("failed to insert history slot", err)
	}
	return nil
}
