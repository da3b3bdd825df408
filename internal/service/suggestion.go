package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SuggestionService maintains the follow-up question set of a session
type SuggestionService struct {
	sessionRepo    domain.SessionRepository
	painPointRepo  domain.PainPointRepository
	historyRepo    domain.HistoryRepository
	suggestionRepo domain.SuggestionRepository
	tx             domain.Transactor
	llmRouter      *llm.Router
	locker         SessionLocker
	provider       string
	model          string
	now            func() time.Time
}

// SuggestionOptions selects the model used for suggestions. Empty values
// fall back to the router default.
type SuggestionOptions struct {
	Provider string
	Model    string
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	sessionRepo domain.SessionRepository,
	painPointRepo domain.PainPointRepository,
	historyRepo domain.HistoryRepository,
	suggestionRepo domain.SuggestionRepository,
	tx domain.Transactor,
	llmRouter *llm.Router,
	locker SessionLocker,
	opts SuggestionOptions,
) *SuggestionService {
	return &SuggestionService{
		sessionRepo:    sessionRepo,
		painPointRepo:  painPointRepo,
		historyRepo:    historyRepo,
		suggestionRepo: suggestionRepo,
		tx:             tx,
		llmRouter:      llmRouter,
		locker:         locker,
		provider:       opts.Provider,
		model:          opts.Model,
		now:            time.Now,
	}
}

// Refresh asks the model for new suggestions and replaces the stored set.
// history must be ordered by index. On error the stored set is unchanged.
// The caller must hold the session lock.
func (s *SuggestionService) Refresh(ctx context.Context, sessionID uuid.UUID, painPoints []domain.PainPoint, history []domain.HistorySlot) ([]domain.Suggestion, error) {
	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}

	var result llm.SuggestionsResult
	resp, err := llm.InvokeStructured(ctx, provider, llm.Request{
		Prompt:            llm.BuildSuggestionsPrompt(painPoints, history),
		SystemInstruction: llm.SuggestionsSystemMessage,
		Schema:            llm.SuggestionsSchema(),
		Model:             s.model,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	now := s.now().UTC()
	suggestions := make([]domain.Suggestion, len(result.Suggestions))
	for i, item := range result.Suggestions {
		suggestions[i] = domain.Suggestion{
			ID:          uuid.New(),
			SessionID:   sessionID,
			Title:       item.Title,
			Description: item.Description,
			Index:       i,
			CreatedAt:   now,
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.suggestionRepo.DeleteBySession(ctx, sessionID); err != nil {
			return err
		}
		return s.suggestionRepo.BulkInsert(ctx, suggestions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store suggestions: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("count", len(suggestions)).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Suggestions refreshed")

	return suggestions, nil
}

// Generate refreshes suggestions from the stored session state. Unlike the
// refresh that follows a message, failures are returned to the caller.
func (s *SuggestionService) Generate(ctx context.Context, sessionID uuid.UUID) ([]domain.Suggestion, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	points, err := s.painPointRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.historyRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.Refresh(ctx, sessionID, points, history)
}

// List returns the session's suggestions ordered by index
func (s *SuggestionService) List(ctx context.Context, sessionID uuid.UUID) ([]domain.Suggestion, error) {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.suggestionRepo.ListBySession(ctx, sessionID)
}
