package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/Rrens/pain-mapper/internal/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string              { return "mock" }
func (m *MockProvider) AvailableModels() []string { return []string{"mock-1"} }
func (m *MockProvider) DefaultModel() string      { return "mock-1" }
func (m *MockProvider) IsConfigured() bool        { return true }

func (m *MockProvider) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

var (
	sessionCall = mock.MatchedBy(func(req llm.Request) bool {
		return req.SystemInstruction == llm.SessionSystemMessage
	})
	suggestionCall = mock.MatchedBy(func(req llm.Request) bool {
		return req.SystemInstruction == llm.SuggestionsSystemMessage
	})
)

func reply(content string) *llm.Response {
	return &llm.Response{Content: content, Model: "mock-1"}
}

// MockTranscriber mocks the speech.Transcriber interface
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Name() string { return "mock" }

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	args := m.Called(ctx, audio, mimeType)
	return args.String(0), args.Error(1)
}

// failingHistoryRepo fails every insert
type failingHistoryRepo struct {
	domain.HistoryRepository
	err error
}

func (f failingHistoryRepo) Insert(context.Context, *domain.HistorySlot) error {
	return f.err
}

// testEnv wires the services over a throwaway SQLite database
type testEnv struct {
	db          *sqlite.DB
	sessionRepo *sqlite.SessionRepository
	pointRepo   *sqlite.PainPointRepository
	historyRepo *sqlite.HistoryRepository
	suggestRepo *sqlite.SuggestionRepository
	provider    *MockProvider
	router      *llm.Router
	catalog     *anatomy.Catalog
	locker      *LocalLocker
	sessions    *SessionService
	suggestions *SuggestionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.RunMigrations(db))
	t.Cleanup(func() { db.Close() })

	catalog, err := anatomy.NewCatalog([]domain.Landmark{
		{Name: "lower_back", Position: domain.Vec3{X: 0, Y: -0.4, Z: 0.1}, Label: "Lower Back", Category: "back"},
		{Name: "left_knee", Position: domain.Vec3{X: -0.15, Y: -1.1, Z: 0.05}, Label: "Left Knee", Category: "legs"},
	})
	require.NoError(t, err)

	provider := new(MockProvider)
	router := llm.NewRouter("mock")
	router.RegisterProvider(provider)

	env := &testEnv{
		db:          db,
		sessionRepo: sqlite.NewSessionRepository(db),
		pointRepo:   sqlite.NewPainPointRepository(db),
		historyRepo: sqlite.NewHistoryRepository(db),
		suggestRepo: sqlite.NewSuggestionRepository(db),
		provider:    provider,
		router:      router,
		catalog:     catalog,
		locker:      NewLocalLocker(),
	}
	env.sessions = NewSessionService(env.sessionRepo, env.pointRepo, env.historyRepo, env.suggestRepo, db, env.locker)
	env.suggestions = NewSuggestionService(env.sessionRepo, env.pointRepo, env.historyRepo, env.suggestRepo, db, router, env.locker, SuggestionOptions{})
	return env
}

func (e *testEnv) reconciler(opts ReconcilerOptions) *Reconciler {
	return e.reconcilerWithHistory(e.historyRepo, opts)
}

func (e *testEnv) reconcilerWithHistory(history domain.HistoryRepository, opts ReconcilerOptions) *Reconciler {
	return NewReconciler(e.sessionRepo, e.pointRepo, history, e.db, e.router, e.catalog, e.suggestions, e.locker, opts)
}

func (e *testEnv) newSession(t *testing.T) uuid.UUID {
	t.Helper()
	s, err := e.sessions.Create(context.Background(), domain.SessionCreate{})
	require.NoError(t, err)
	return s.ID
}

func (e *testEnv) addPoint(t *testing.T, sessionID uuid.UUID, label string, rating int) {
	t.Helper()
	_, err := e.sessions.AddPainPoint(context.Background(), sessionID, domain.PainPointCreate{
		Position: domain.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
		Label:    label,
		Type:     domain.PainTypeSharp,
		Rating:   &rating,
	})
	require.NoError(t, err)
}

func (e *testEnv) points(t *testing.T, sessionID uuid.UUID) []domain.PainPoint {
	t.Helper()
	points, err := e.pointRepo.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	return points
}
