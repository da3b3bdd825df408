package anatomy_test

import (
	"testing"
	"time"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *anatomy.Catalog {
	t.Helper()
	c, err := anatomy.NewCatalog([]domain.Landmark{
		{Name: "lower_back", Position: domain.Vec3{X: 0, Y: -0.4, Z: 0.1}, Label: "Lower Back", Category: "back"},
		{Name: "left_knee", Position: domain.Vec3{X: 0.15, Y: -1.2, Z: 0.05}, Label: "Left Knee", Category: "legs"},
	})
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func TestResolve_LowerBackScenario(t *testing.T) {
	sessionID := uuid.New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	res := anatomy.Resolve(sessionID, []domain.ProposedPainPoint{
		{Landmark: "lower_back", Label: "Dull ache", Type: domain.PainTypeDull, Rating: 6},
	}, testCatalog(t), now)

	require.Len(t, res.Points, 1)
	assert.Empty(t, res.Unresolved)

	p := res.Points[0]
	assert.Equal(t, domain.Vec3{X: 0, Y: -0.4, Z: 0.1}, p.Position)
	assert.Equal(t, "Dull ache", p.Label)
	assert.Equal(t, domain.PainTypeDull, p.Type)
	assert.Equal(t, 6, p.Rating)
	assert.Equal(t, sessionID, p.SessionID)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, uuid.Nil, p.ID)
}

func TestResolve_DropsUnknownLandmarks(t *testing.T) {
	res := anatomy.Resolve(uuid.New(), []domain.ProposedPainPoint{
		{Landmark: "Lower_Back", Type: domain.PainTypeSharp, Rating: 3},
		{Landmark: "left_knee", Label: "Clicking", Type: domain.PainTypeSharp, Rating: 4},
		{Landmark: "tail", Type: domain.PainTypeOther, Rating: 1},
	}, testCatalog(t), time.Now())

	require.Len(t, res.Points, 1)
	assert.Equal(t, "Clicking", res.Points[0].Label)
	assert.Equal(t, []string{"Lower_Back", "tail"}, res.Unresolved)
}

func TestResolve_IsPure(t *testing.T) {
	sessionID := uuid.New()
	now := time.Now()
	catalog := testCatalog(t)
	proposals := []domain.ProposedPainPoint{
		{Landmark: "lower_back", Label: "Ache", Type: domain.PainTypeDull, Notes: strPtr("after lifting"), Rating: 6},
		{Landmark: "left_knee", Label: "Clicking", Type: domain.PainTypeSharp, Rating: 2},
	}

	first := anatomy.Resolve(sessionID, proposals, catalog, now)
	second := anatomy.Resolve(sessionID, proposals, catalog, now)
	assert.Equal(t, first, second)

	// Mutating the output must not leak into the input
	*first.Points[0].Notes = "changed"
	assert.Equal(t, "after lifting", *proposals[0].Notes)
}

func TestResolve_EmptyInput(t *testing.T) {
	res := anatomy.Resolve(uuid.New(), nil, testCatalog(t), time.Now())
	assert.Empty(t, res.Points)
	assert.Empty(t, res.Unresolved)
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := anatomy.NewCatalog([]domain.Landmark{{Name: "a"}, {Name: "a"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = anatomy.NewCatalog([]domain.Landmark{{Name: ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_NameAt(t *testing.T) {
	c := testCatalog(t)

	name, ok := c.NameAt(domain.Vec3{X: 0.15, Y: -1.2, Z: 0.05})
	assert.True(t, ok)
	assert.Equal(t, "left_knee", name)

	_, ok = c.NameAt(domain.Vec3{X: 9})
	assert.False(t, ok)
}

func TestLoadCatalog(t *testing.T) {
	c, err := anatomy.LoadCatalog("../../configs/landmarks.yaml")
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 0)

	l, ok := c.Lookup("lower_back")
	require.True(t, ok)
	assert.Equal(t, "Lower Back", l.Label)
	assert.Equal(t, domain.Vec3{X: 0, Y: -0.4, Z: 0.1}, l.Position)
}
