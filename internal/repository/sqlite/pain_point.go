package sqlite

import (
	"context"
	"database/sql"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
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

const insertPainPoint = `INSERT INTO pain_points (` + painPointColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPainPoint(row rowScanner) (domain.PainPoint, error) {
	var (
		p                domain.PainPoint
		typ              string
		notes            sql.NullString
		created, updated int64
	)
	err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.Position.X,
		&p.Position.Y,
		&p.Position.Z,
		&p.Label,
		&typ,
		&notes,
		&p.Rating,
		&created,
		&updated,
	)
	if err != nil {
		return p, err
	}
	p.Type = domain.PainType(typ)
	if notes.Valid {
		n := notes.String
		p.Notes = &n
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func painPointArgs(p *domain.PainPoint) []any {
	return []any{
		p.ID.String(),
		p.SessionID.String(),
		p.Position.X,
		p.Position.Y,
		p.Position.Z,
		p.Label,
		string(p.Type),
		nullString(p.Notes),
		p.Rating,
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PainPointRepository) Create(ctx context.Context, point *domain.PainPoint) error {
	if _, err := r.db.conn(ctx).ExecContext(ctx, insertPainPoint, painPointArgs(point)...); err != nil {
		return persistErr("failed to create pain point", err)
	}
	return nil
}

func (r *PainPointRepository) Get(ctx context.Context, id uuid.UUID) (*domain.PainPoint, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+painPointColumns+` FROM pain_points WHERE id = ?`, id.String())
	p, err := scanPainPoint(row)
	if err != nil {
		return nil, notFoundOr("failed to get pain point", err)
	}
	return &p, nil
}

func (r *PainPointRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PainPoint, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT `+painPointColumns+`
		FROM pain_points
		WHERE session_id = ?
		ORDER BY rowid
	`, sessionID.String())
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
	res, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE pain_points
		SET label = ?, type = ?, notes = ?, rating = ?, updated_at = ?
		WHERE id = ?
	`, point.Label, string(point.Type), nullString(point.Notes), point.Rating, toMillis(point.UpdatedAt), point.ID.String())
	if err != nil {
		return persistErr("failed to update pain point", err)
	}
	return checkAffected("failed to update pain point", res)
}

func (r *PainPointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM pain_points WHERE id = ?`, id.String())
	if err != nil {
		return persistErr("failed to delete pain point", err)
	}
	return checkAffected("failed to delete pain point", res)
}

func (r *PainPointRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM pain_points WHERE session_id = ?`, sessionID.String()); err != nil {
		return persistErr("failed to delete pain points", err)
	}
	return nil
}

// BulkInsert inserts points in slice order. Callers wanting all-or-nothing
// semantics run it inside WithinTransaction.
func (r *PainPointRepository) BulkInsert(ctx context.Context, points []domain.PainPoint) error {
	q := r.db.conn(ctx)
	for i := range points {
		if _, err := q.ExecContext(ctx, insertPainPoint, painPointArgs(&points[i])...); err != nil {
			return persistErr("failed to bulk insert pain points", err)
		}
	}
	return nil
}
