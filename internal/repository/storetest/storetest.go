// Package storetest holds the contract tests every persistence backend must
// pass. Backends embed Suite and fill in Store from SetupTest.
package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Store groups the repositories of one backend
type Store struct {
	Sessions    domain.SessionRepository
	PainPoints  domain.PainPointRepository
	History     domain.HistoryRepository
	Suggestions domain.SuggestionRepository
	Tx          domain.Transactor
}

// Suite runs the repository contract against Store
type Suite struct {
	suite.Suite
	Store Store
}

// now is truncated to what every backend can round-trip
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func strPtr(s string) *string { return &s }

func (s *Suite) createSession() domain.Session {
	ts := now()
	sess := domain.Session{ID: uuid.New(), Title: domain.DefaultSessionTitle, CreatedAt: ts, UpdatedAt: ts}
	s.Require().NoError(s.Store.Sessions.Create(context.Background(), &sess))
	return sess
}

func newPoint(sessionID uuid.UUID, label string, rating int) domain.PainPoint {
	ts := now()
	return domain.PainPoint{
		ID:        uuid.New(),
		SessionID: sessionID,
		Position:  domain.Vec3{X: 0, Y: -0.4, Z: 0.1},
		Label:     label,
		Type:      domain.PainTypeDull,
		Rating:    rating,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func (s *Suite) TestSessionCRUD() {
	ctx := context.Background()
	sess := s.createSession()

	got, err := s.Store.Sessions.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(domain.DefaultSessionTitle, got.Title)
	s.True(sess.CreatedAt.Equal(got.CreatedAt))

	later := sess.UpdatedAt.Add(time.Minute)
	s.Require().NoError(s.Store.Sessions.Touch(ctx, sess.ID, later))

	got, err = s.Store.Sessions.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.True(later.Equal(got.UpdatedAt))

	_, err = s.Store.Sessions.Get(ctx, uuid.New())
	s.ErrorIs(err, domain.ErrNotFound)

	s.ErrorIs(s.Store.Sessions.Touch(ctx, uuid.New(), later), domain.ErrNotFound)
}

func (s *Suite) TestSessionListNewestFirst() {
	ctx := context.Background()
	first := s.createSession()
	second := s.createSession()
	s.Require().NoError(s.Store.Sessions.Touch(ctx, first.ID, now().Add(time.Hour)))

	list, err := s.Store.Sessions.List(ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)

	page, err := s.Store.Sessions.List(ctx, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(second.ID, page[0].ID)
}

func (s *Suite) TestPainPointLifecycle() {
	ctx := context.Background()
	sess := s.createSession()

	p := newPoint(sess.ID, "ache", 6)
	p.Notes = strPtr("after lifting")
	s.Require().NoError(s.Store.PainPoints.Create(ctx, &p))

	got, err := s.Store.PainPoints.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Position, got.Position)
	s.Equal(domain.PainTypeDull, got.Type)
	s.Require().NotNil(got.Notes)
	s.Equal("after lifting", *got.Notes)

	got.Rating = 9
	got.Label = "worse"
	got.Notes = nil
	got.UpdatedAt = now().Add(time.Second)
	s.Require().NoError(s.Store.PainPoints.Update(ctx, got))

	updated, err := s.Store.PainPoints.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(9, updated.Rating)
	s.Equal("worse", updated.Label)
	s.Nil(updated.Notes)

	s.Require().NoError(s.Store.PainPoints.Delete(ctx, p.ID))
	_, err = s.Store.PainPoints.Get(ctx, p.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(s.Store.PainPoints.Delete(ctx, p.ID), domain.ErrNotFound)

	missing := newPoint(sess.ID, "ghost", 1)
	s.ErrorIs(s.Store.PainPoints.Update(ctx, &missing), domain.ErrNotFound)
}

func (s *Suite) TestPainPointBulkReplace() {
	ctx := context.Background()
	sess := s.createSession()
	other := s.createSession()

	s.Require().NoError(s.Store.PainPoints.BulkInsert(ctx, []domain.PainPoint{
		newPoint(sess.ID, "a", 1),
		newPoint(sess.ID, "b", 2),
		newPoint(sess.ID, "c", 3),
	}))
	keep := newPoint(other.ID, "other", 4)
	s.Require().NoError(s.Store.PainPoints.Create(ctx, &keep))

	list, err := s.Store.PainPoints.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"a", "b", "c"}, []string{list[0].Label, list[1].Label, list[2].Label})

	s.Require().NoError(s.Store.PainPoints.DeleteBySession(ctx, sess.ID))
	list, err = s.Store.PainPoints.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Empty(list)

	list, err = s.Store.PainPoints.ListBySession(ctx, other.ID)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.NoError(s.Store.PainPoints.BulkInsert(ctx, nil))
}

func (s *Suite) TestHistoryAppendAndSnapshot() {
	ctx := context.Background()
	sess := s.createSession()

	for i, msg := range []string{"first", "second", "third"} {
		n, err := s.Store.History.CountBySession(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(i, n)

		slot := domain.HistorySlot{
			ID:          uuid.New(),
			SessionID:   sess.ID,
			Index:       n,
			UserMessage: msg,
			PainPoints:  []domain.PainPoint{newPoint(sess.ID, msg, i)},
			CreatedAt:   now(),
		}
		if i == 2 {
			slot.Notes = strPtr("latest notes")
		}
		s.Require().NoError(s.Store.History.Insert(ctx, &slot))
	}

	slots, err := s.Store.History.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(slots, 3)
	for i, slot := range slots {
		s.Equal(i, slot.Index)
		s.Require().Len(slot.PainPoints, 1)
	}
	s.Equal("second", slots[1].PainPoints[0].Label)
	s.Nil(slots[0].Notes)

	notes, ok := domain.LatestNotes(slots)
	s.True(ok)
	s.Equal("latest notes", notes)

	dup := domain.HistorySlot{ID: uuid.New(), SessionID: sess.ID, Index: 1, UserMessage: "dup", CreatedAt: now()}
	s.ErrorIs(s.Store.History.Insert(ctx, &dup), domain.ErrPersistence)
}

func (s *Suite) TestHistoryEmptySnapshot() {
	ctx := context.Background()
	sess := s.createSession()

	slot := domain.HistorySlot{ID: uuid.New(), SessionID: sess.ID, UserMessage: "hi", CreatedAt: now()}
	s.Require().NoError(s.Store.History.Insert(ctx, &slot))

	slots, err := s.Store.History.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(slots, 1)
	s.NotNil(slots[0].PainPoints)
	s.Empty(slots[0].PainPoints)
}

func (s *Suite) TestSuggestionsReplaceAll() {
	ctx := context.Background()
	sess := s.createSession()

	batch := func(titles ...string) []domain.Suggestion {
		out := make([]domain.Suggestion, len(titles))
		for i, t := range titles {
			out[i] = domain.Suggestion{ID: uuid.New(), SessionID: sess.ID, Title: t, Description: t + "?", Index: i, CreatedAt: now()}
		}
		return out
	}

	s.Require().NoError(s.Store.Suggestions.BulkInsert(ctx, batch("a", "b", "c")))
	s.Require().NoError(s.Store.Suggestions.DeleteBySession(ctx, sess.ID))
	s.Require().NoError(s.Store.Suggestions.BulkInsert(ctx, batch("x", "y")))

	list, err := s.Store.Suggestions.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("x", list[0].Title)
	s.Equal(0, list[0].Index)
	s.Equal(1, list[1].Index)
}

func (s *Suite) TestTransactionRollback() {
	ctx := context.Background()
	sess := s.createSession()
	s.Require().NoError(s.Store.PainPoints.BulkInsert(ctx, []domain.PainPoint{newPoint(sess.ID, "kept", 5)}))

	boom := errors.New("boom")
	err := s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Store.PainPoints.DeleteBySession(ctx, sess.ID); err != nil {
			return err
		}
		if err := s.Store.PainPoints.BulkInsert(ctx, []domain.PainPoint{newPoint(sess.ID, "new", 1)}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	list, err := s.Store.PainPoints.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("kept", list[0].Label)
}

func (s *Suite) TestTransactionCommit() {
	ctx := context.Background()
	sess := s.createSession()

	err := s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Store.PainPoints.BulkInsert(ctx, []domain.PainPoint{newPoint(sess.ID, "new", 1)}); err != nil {
			return err
		}
		slot := domain.HistorySlot{ID: uuid.New(), SessionID: sess.ID, UserMessage: "m", CreatedAt: now()}
		return s.Store.History.Insert(ctx, &slot)
	})
	s.Require().NoError(err)

	list, err := s.Store.PainPoints.ListBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Len(list, 1)

	n, err := s.Store.History.CountBySession(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}
