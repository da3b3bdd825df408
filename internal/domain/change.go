package domain

// ChangeKind says what a model response wants done with the pain point set
type ChangeKind int

const (
	// ChangeUnchanged leaves the existing set untouched
	ChangeUnchanged ChangeKind = iota
	// ChangeCleared removes every pain point of the session
	ChangeCleared
	// ChangeReplaced swaps the set for the proposals
	ChangeReplaced
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCleared:
		return "cleared"
	case ChangeReplaced:
		return "replaced"
	default:
		return "unchanged"
	}
}

// ProposedPainPoint is a pain point as authored by the model. It names a
// landmark instead of carrying coordinates.
type ProposedPainPoint struct {
	Landmark string   `json:"landmark" validate:"required"`
	Label    string   `json:"label" validate:"max=255"`
	Type     PainType `json:"type" validate:"required,oneof=sharp dull burning tingling throbbing cramping shooting other"`
	Notes    *string  `json:"notes,omitempty"`
	Rating   int      `json:"rating" validate:"min=0,max=10"`
}

// PainPointChange is the tri-state outcome of a model response for the pain
// point set. The zero value is Unchanged.
type PainPointChange struct {
	kind      ChangeKind
	proposals []ProposedPainPoint
}

// Unchanged keeps the current set
func Unchanged() PainPointChange {
	return PainPointChange{kind: ChangeUnchanged}
}

// Cleared empties the set
func Cleared() PainPointChange {
	return PainPointChange{kind: ChangeCleared}
}

// Replaced swaps the set for proposals. An empty list is Cleared.
func Replaced(proposals []ProposedPainPoint) PainPointChange {
	if len(proposals) == 0 {
		return Cleared()
	}
	cp := make([]ProposedPainPoint, len(proposals))
	copy(cp, proposals)
	return PainPointChange{kind: ChangeReplaced, proposals: cp}
}

// Kind returns the change kind
func (c PainPointChange) Kind() ChangeKind {
	return c.kind
}

// Mutates reports whether the change rewrites the stored set
func (c PainPointChange) Mutates() bool {
	return c.kind != ChangeUnchanged
}

// Proposals returns the replacement list; nil unless Kind is ChangeReplaced
func (c PainPointChange) Proposals() []ProposedPainPoint {
	return c.proposals
}
