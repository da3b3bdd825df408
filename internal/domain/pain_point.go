package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PainType is the closed set of pain qualities a point can carry
type PainType string

const (
	PainTypeSharp     PainType = "sharp"
	PainTypeDull      PainType = "dull"
	PainTypeBurning   PainType = "burning"
	PainTypeTingling  PainType = "tingling"
	PainTypeThrobbing PainType = "throbbing"
	PainTypeCramping  PainType = "cramping"
	PainTypeShooting  PainType = "shooting"
	PainTypeOther     PainType = "other"
)

// PainTypes lists every valid pain type in display order
var PainTypes = []PainType{
	PainTypeSharp,
	PainTypeDull,
	PainTypeBurning,
	PainTypeTingling,
	PainTypeThrobbing,
	PainTypeCramping,
	PainTypeShooting,
	PainTypeOther,
}

// Valid reports whether t is one of PainTypes
func (t PainType) Valid() bool {
	for _, pt := range PainTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// Rating bounds
const (
	MinRating     = 0
	MaxRating     = 10
	DefaultRating = 5
)

// Vec3 is a point on the body model
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// PainPoint is a located, rated pain description
type PainPoint struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Position  Vec3      `json:"position"`
	Label     string    `json:"label"`
	Type      PainType  `json:"type"`
	Notes     *string   `json:"notes,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PainPointCreate represents a direct placement from the body model
type PainPointCreate struct {
	Position Vec3     `json:"position"`
	Label    string   `json:"label" validate:"max=255"`
	Type     PainType `json:"type" validate:"omitempty,oneof=sharp dull burning tingling throbbing cramping shooting other"`
	Notes    *string  `json:"notes,omitempty"`
	Rating   *int     `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
}

// PainPointUpdate represents a partial edit of a pain point
type PainPointUpdate struct {
	Label  *string   `json:"label,omitempty" validate:"omitempty,max=255"`
	Type   *PainType `json:"type,omitempty" validate:"omitempty,oneof=sharp dull burning tingling throbbing cramping shooting other"`
	Notes  *string   `json:"notes,omitempty"`
	Rating *int      `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
}

// Apply copies the set fields of u onto p
func (u PainPointUpdate) Apply(p *PainPoint, now time.Time) {
	if u.Label != nil {
		p.Label = *u.Label
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Notes != nil {
		p.Notes = u.Notes
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	p.UpdatedAt = now
}

// PainPointRepository defines the interface for pain point storage
type PainPointRepository interface {
	Create(ctx context.Context, point *PainPoint) error
	Get(ctx context.Context, id uuid.UUID) (*PainPoint, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]PainPoint, error)
	Update(ctx context.Context, point *PainPoint) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
	BulkInsert(ctx context.Context, points []PainPoint) error
}
