package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var validate = validator.New()

// SessionService handles session reads and direct edits from the UI
type SessionService struct {
	sessionRepo    domain.SessionRepository
	painPointRepo  domain.PainPointRepository
	historyRepo    domain.HistoryRepository
	suggestionRepo domain.SuggestionRepository
	tx             domain.Transactor
	locker         SessionLocker
	now            func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo domain.SessionRepository,
	painPointRepo domain.PainPointRepository,
	historyRepo domain.HistoryRepository,
	suggestionRepo domain.SuggestionRepository,
	tx domain.Transactor,
	locker SessionLocker,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		painPointRepo:  painPointRepo,
		historyRepo:    historyRepo,
		suggestionRepo: suggestionRepo,
		tx:             tx,
		locker:         locker,
		now:            time.Now,
	}
}

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// Create creates an empty session
func (s *SessionService) Create(ctx context.Context, in domain.SessionCreate) (*domain.Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = domain.DefaultSessionTitle
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns sessions, most recently updated first
func (s *SessionService) List(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.List(ctx, limit, offset)
}

// Get returns the session with its pain points
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.SessionView, error) {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	points, err := s.painPointRepo.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.SessionView{Session: *session, PainPoints: points}, nil
}

// GetDetail returns the session with points, history and suggestions,
// fetched concurrently
func (s *SessionService) GetDetail(ctx context.Context, id uuid.UUID) (*domain.SessionDetail, error) {
	var (
		session     *domain.Session
		points      []domain.PainPoint
		history     []domain.HistorySlot
		suggestions []domain.Suggestion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessionRepo.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		points, err = s.painPointRepo.ListBySession(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.historyRepo.ListBySession(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		suggestions, err = s.suggestionRepo.ListBySession(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.SessionDetail{
		SessionView: domain.SessionView{Session: *session, PainPoints: points},
		History:     history,
		Suggestions: suggestions,
	}, nil
}

// AddPainPoint places a pain point from the body model
func (s *SessionService) AddPainPoint(ctx context.Context, sessionID uuid.UUID, in domain.PainPointCreate) (*domain.PainPoint, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now().UTC()
	point := &domain.PainPoint{
		ID:        uuid.New(),
		SessionID: sessionID,
		Position:  in.Position,
		Label:     in.Label,
		Type:      in.Type,
		Notes:     in.Notes,
		Rating:    domain.DefaultRating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if point.Type == "" {
		point.Type = domain.PainTypeOther
	}
	if in.Rating != nil {
		point.Rating = *in.Rating
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
			return err
		}
		if err := s.painPointRepo.Create(ctx, point); err != nil {
			return err
		}
		return s.sessionRepo.Touch(ctx, sessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

// UpdatePainPoint edits the set fields of a pain point
func (s *SessionService) UpdatePainPoint(ctx context.Context, sessionID, pointID uuid.UUID, in domain.PainPointUpdate) (*domain.PainPoint, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var point *domain.PainPoint
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.painPointRepo.Get(ctx, pointID)
		if err != nil {
			return err
		}
		if p.SessionID != sessionID {
			return fmt.Errorf("pain point %s: %w", pointID, domain.ErrNotFound)
		}

		now := s.now().UTC()
		in.Apply(p, now)
		if err := s.painPointRepo.Update(ctx, p); err != nil {
			return err
		}
		point = p
		return s.sessionRepo.Touch(ctx, sessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

// DeletePainPoint removes one pain point
func (s *SessionService) DeletePainPoint(ctx context.Context, sessionID, pointID uuid.UUID) error {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.painPointRepo.Get(ctx, pointID)
		if err != nil {
			return err
		}
		if p.SessionID != sessionID {
			return fmt.Errorf("pain point %s: %w", pointID, domain.ErrNotFound)
		}
		if err := s.painPointRepo.Delete(ctx, pointID); err != nil {
			return err
		}
		return s.sessionRepo.Touch(ctx, sessionID, s.now().UTC())
	})
}

// AppendHistory records a history slot without a model call. The slot
// snapshots the current pain points.
func (s *SessionService) AppendHistory(ctx context.Context, sessionID uuid.UUID, in domain.HistorySlotCreate) (*domain.HistorySlot, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var slot domain.HistorySlot
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
			return err
		}
		points, err := s.painPointRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		index, err := s.historyRepo.CountBySession(ctx, sessionID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		slot = domain.HistorySlot{
			ID:          uuid.New(),
			SessionID:   sessionID,
			Index:       index,
			UserMessage: in.UserMessage,
			PainPoints:  points,
			Notes:       in.Notes,
			CreatedAt:   now,
		}
		if err := s.historyRepo.Insert(ctx, &slot); err != nil {
			return err
		}
		return s.sessionRepo.Touch(ctx, sessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListHistory returns the session's history ordered by index
func (s *SessionService) ListHistory(ctx context.Context, sessionID uuid.UUID) ([]domain.HistorySlot, error) {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListBySession(ctx, sessionID)
}
