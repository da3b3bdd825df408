package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PainPointRepository implements domain.PainPointRepository
type PainPointRepository struct {
	db *DB
}

// NewPainPointRepository creates a new pain point repository
func NewPainPointRepository(db *DB) *PainPointRepository {
	return &PainPointRepository{db: db}
}

const painPointColumns = `id, session_id, position_x, position_y, position_z, label, type, notes, rating, created_at, updated_at`

func scanPainPoint(row pgx.Row) (domain.PainPoint, error) {
	var p domain.PainPoint
	err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.Position.X,
		&p.Position.Y,
		&p.Position.Z,
		&p.Label,
		&p.Type,
		&p.Notes,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PainPointRepository) Create(ctx context.Context, point *domain.PainPoint) error {
	query := `
		INSERT INTO pain_points (` + painPointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.conn(ctx).Exec(ctx, query,
		point.ID,
		point.SessionID,
		point.Position.X,
		point.Position.Y,
		point.Position.Z,
		point.Label,
		string(point.Type),
		point.Notes,
		point.Rating,
		point.CreatedAt,
		point.UpdatedAt,
	)
	if err != nil {
		return persistErr("failed to create pain point", err)
	}
	return nil
}

func (r *PainPointRepository) Get(ctx context.Context, id uuid.UUID) (*domain.PainPoint, error) {
	query := `SELECT ` + painPointColumns + ` FROM pain_points WHERE id = $1`

	p, err := scanPainPoint(r.db.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("failed to get pain point", err)
	}
	return &p, nil
}

func (r *PainPointRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PainPoint, error) {
	query := `
		SELECT ` + painPointColumns + `
		FROM pain_points
		WHERE session_id = $1
		ORDER BY seq
	`
	rows, err := r.db.conn(ctx).Query(ctx, query, sessionID)
	if err != nil {
		return nil, persistErr("failed to list pain points", err)
	}
	defer rows.Close()

	points := []domain.PainPoint{}
	for rows.Next() {
		p, err := scanPainPoint(rows)
		if err != nil {
			return nil, persistErr("failed to scan pain point", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("failed to list pain points", err)
	}
	return points, nil
}

func (r *PainPointRepository) Update(ctx context.Context, point *domain.PainPoint) error {
	query := `
		UPDATE pain_points
		SET label = $1, type = $2, notes = $3, rating = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.conn(ctx).Exec(ctx, query,
		point.Label,
		string(point.Type),
		point.Notes,
		point.Rating,
		point.UpdatedAt,
		point.ID,
	)
	if err != nil {
		return persistErr("failed to update pain point", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update pain point: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PainPointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.conn(ctx).Exec(ctx, `DELETE FROM pain_points WHERE id = $1`, id)
	if err != nil {
		return persistErr("failed to delete pain point", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete pain point: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PainPointRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, `DELETE FROM pain_points WHERE session_id = $1`, sessionID)
	if err != nil {
		return persistErr("failed to delete pain points", err)
	}
	return nil
}

// BulkInsert copies points in slice order
func (r *PainPointRepository) BulkInsert(ctx context.Context, points []domain.PainPoint) error {
	if len(points) == 0 {
		return nil
	}

	_, err := r.db.conn(ctx).CopyFrom(ctx,
		pgx.Identifier{"pain_points"},
		[]string{"id", "session_id", "position_x", "position_y", "position_z", "label", "type", "notes", "rating", "created_at", "updated_at"},
		pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
			p := points[i]
			return []any{
				p.ID,
				p.SessionID,
				p.Position.X,
				p.Position.Y,
				p.Position.Z,
				p.Label,
				string(p.Type),
				p.Notes,
				p.Rating,
				p.CreatedAt,
				p.UpdatedAt,
			}, nil
		}),
	)
	if err != nil {
		return persistErr("failed to bulk insert pain points", err)
	}
	return nil
}
