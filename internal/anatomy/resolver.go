package anatomy

import (
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
)

// Resolution is the outcome of resolving model proposals against a catalog
type Resolution struct {
	// Points are ready for bulk insertion; IDs are left for the store to assign
	Points []domain.PainPoint
	// Unresolved lists landmark names that are not in the catalog, in input order
	Unresolved []string
}

// Resolve maps proposals onto catalog positions. Position always comes from
// the catalog; label, type, notes and rating come from the proposal. Proposals
// naming an unknown landmark are dropped and reported in Unresolved.
func Resolve(sessionID uuid.UUID, proposals []domain.ProposedPainPoint, catalog *Catalog, now time.Time) Resolution {
	res := Resolution{Points: make([]domain.PainPoint, 0, len(proposals))}

	for _, p := range proposals {
		landmark, ok := catalog.Lookup(p.Landmark)
		if !ok {
			res.Unresolved = append(res.Unresolved, p.Landmark)
			continue
		}

		var notes *string
		if p.Notes != nil {
			n := *p.Notes
			notes = &n
		}

		res.Points = append(res.Points, domain.PainPoint{
			SessionID: sessionID,
			Position:  landmark.Position,
			Label:     p.Label,
			Type:      p.Type,
			Notes:     notes,
			Rating:    p.Rating,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return res
}
