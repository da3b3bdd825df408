package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MessageInput is one user message to reconcile into a session
type MessageInput struct {
	Message string
	// Catalog overrides the default landmark catalog when set
	Catalog  *anatomy.Catalog
	Provider string
	Model    string
}

// ProcessResult is the post-operation state returned to the caller
type ProcessResult struct {
	Session             *domain.SessionView `json:"session"`
	HistorySlot         domain.HistorySlot  `json:"history_slot"`
	UnresolvedLandmarks []string            `json:"unresolved_landmarks"`
	// Suggestions is set when the refresh ran inline and succeeded
	Suggestions []domain.Suggestion `json:"suggestions,omitempty"`
}

// ReconcilerOptions controls the suggestion step
type ReconcilerOptions struct {
	AsyncSuggestions  bool
	SuggestionTimeout time.Duration
}

// Reconciler merges model output for a user message into session state
type Reconciler struct {
	sessionRepo   domain.SessionRepository
	painPointRepo domain.PainPointRepository
	historyRepo   domain.HistoryRepository
	tx            domain.Transactor
	llmRouter     *llm.Router
	catalog       *anatomy.Catalog
	suggestions   *SuggestionService
	locker        SessionLocker
	opts          ReconcilerOptions
	now           func() time.Time
	background    sync.WaitGroup
}

// NewReconciler creates a new reconciler
func NewReconciler(
	sessionRepo domain.SessionRepository,
	painPointRepo domain.PainPointRepository,
	historyRepo domain.HistoryRepository,
	tx domain.Transactor,
	llmRouter *llm.Router,
	catalog *anatomy.Catalog,
	suggestions *SuggestionService,
	locker SessionLocker,
	opts ReconcilerOptions,
) *Reconciler {
	return &Reconciler{
		sessionRepo:   sessionRepo,
		painPointRepo: painPointRepo,
		historyRepo:   historyRepo,
		tx:            tx,
		llmRouter:     llmRouter,
		catalog:       catalog,
		suggestions:   suggestions,
		locker:        locker,
		opts:          opts,
		now:           time.Now,
	}
}

// ProcessMessage runs one reconciliation cycle. Any error before the
// suggestion step leaves the session exactly as it was. Suggestion failures
// are logged and never returned.
func (r *Reconciler) ProcessMessage(ctx context.Context, sessionID uuid.UUID, in MessageInput) (*ProcessResult, error) {
	provider, err := r.llmRouter.GetProvider(in.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	catalog := in.Catalog
	if catalog == nil {
		catalog = r.catalog
	}

	unlock, err := r.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	handedOff := false
	defer func() {
		if !handedOff {
			unlock()
		}
	}()

	logger := log.With().Str("session_id", sessionID.String()).Logger()

	// Fetch
	if _, err := r.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	points, err := r.painPointRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := r.historyRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Prompt
	var update llm.SessionUpdate
	resp, err := llm.InvokeStructured(ctx, provider, llm.Request{
		Prompt:            llm.BuildSessionPrompt(catalog, history, points, in.Message),
		SystemInstruction: llm.SessionSystemMessage,
		Schema:            llm.SessionUpdateSchema(),
		Model:             in.Model,
	}, &update)
	if err != nil {
		return nil, fmt.Errorf("failed to process message: %w", err)
	}

	logger.Info().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Str("change", update.PainPoints.Kind().String()).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Model response received")

	now := r.now().UTC()

	var resolution anatomy.Resolution
	if update.PainPoints.Mutates() {
		resolution = anatomy.Resolve(sessionID, update.PainPoints.Proposals(), catalog, now)
		for i := range resolution.Points {
			resolution.Points[i].ID = uuid.New()
		}
		if len(resolution.Unresolved) > 0 {
			logger.Warn().Strs("landmarks", resolution.Unresolved).Msg("Dropped pain points with unknown landmarks")
		}
	}

	// Apply and append history atomically
	var slot domain.HistorySlot
	err = r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current := points
		if update.PainPoints.Mutates() {
			if err := r.painPointRepo.DeleteBySession(ctx, sessionID); err != nil {
				return err
			}
			if err := r.painPointRepo.BulkInsert(ctx, resolution.Points); err != nil {
				return err
			}
			replaced, err := r.painPointRepo.ListBySession(ctx, sessionID)
			if err != nil {
				return err
			}
			current = replaced
		}

		index, err := r.historyRepo.CountBySession(ctx, sessionID)
		if err != nil {
			return err
		}

		slot = domain.HistorySlot{
			ID:          uuid.New(),
			SessionID:   sessionID,
			Index:       index,
			UserMessage: in.Message,
			PainPoints:  current,
			Notes:       update.Notes,
			CreatedAt:   now,
		}
		if err := r.historyRepo.Insert(ctx, &slot); err != nil {
			return err
		}

		return r.sessionRepo.Touch(ctx, sessionID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply session update: %w", err)
	}

	view, err := r.view(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		Session:             view,
		HistorySlot:         slot,
		UnresolvedLandmarks: resolution.Unresolved,
	}
	if result.UnresolvedLandmarks == nil {
		result.UnresolvedLandmarks = []string{}
	}

	fullHistory := make([]domain.HistorySlot, 0, len(history)+1)
	fullHistory = append(fullHistory, history...)
	fullHistory = append(fullHistory, slot)

	if r.opts.AsyncSuggestions {
		// The lock moves to the background refresh so the next cycle for
		// this session waits for it.
		handedOff = true
		r.background.Add(1)
		go func() {
			defer r.background.Done()
			defer unlock()

			bgCtx, cancel := r.suggestionContext(context.WithoutCancel(ctx))
			defer cancel()
			r.refreshSuggestions(bgCtx, sessionID, view.PainPoints, fullHistory)
		}()
		return result, nil
	}

	sugCtx, cancel := r.suggestionContext(ctx)
	defer cancel()
	result.Suggestions = r.refreshSuggestions(sugCtx, sessionID, view.PainPoints, fullHistory)

	return result, nil
}

// Wait blocks until background suggestion refreshes have finished
func (r *Reconciler) Wait() {
	r.background.Wait()
}

func (r *Reconciler) suggestionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.SuggestionTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.SuggestionTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *Reconciler) refreshSuggestions(ctx context.Context, sessionID uuid.UUID, points []domain.PainPoint, history []domain.HistorySlot) []domain.Suggestion {
	if r.suggestions == nil {
		return nil
	}

	suggestions, err := r.suggestions.Refresh(ctx, sessionID, points, history)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to refresh suggestions")
		return nil
	}
	return suggestions
}

func (r *Reconciler) view(ctx context.Context, sessionID uuid.UUID) (*domain.SessionView, error) {
	session, err := r.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	points, err := r.painPointRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.SessionView{Session: *session, PainPoints: points}, nil
}
