package sqlite

import (
	"context"
	"database/sql"
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
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT id, session_id, slot_index, user_message, pain_points, notes, created_at
		FROM history_slots
		WHERE session_id = ?
		ORDER BY slot_index
	`, sessionID.String())
	if err != nil {
		return nil, persistErr("failed to list history", err)
	}
	defer rows.Close()

	slots := []domain.HistorySlot{}
	for rows.Next() {
		var (
			s        domain.HistorySlot
			snapshot string
			notes    sql.NullString
			created  int64
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Index, &s.UserMessage, &snapshot, &notes, &created); err != nil {
			return nil, persistErr("failed to scan history slot", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &s.PainPoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history snapshot: %w", err)
		}
		if notes.Valid {
			n := notes.String
			s.Notes = &n
		}
		s.CreatedAt = fromMillis(created)
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list history", err)
	}
	return slots, nil
}

func (r *HistoryRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM history_slots WHERE session_id = ?`, sessionID.String()).Scan(&n)
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

	_, err = r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO history_slots (id, session_id, slot_index, user_message, pain_points, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, slot.ID.String(), slot.SessionID.String(), slot.Index, slot.UserMessage, string(snapshot), nullString(slot.Notes), toMillis(slot.CreatedAt))
	if err != nil {
		return persistErr("failed to insert history slot", err)
	}
	return nil
}
