package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const noSuggestions = `{"suggestions": []}`

func TestProcessMessage_AbsentPainPointsLeavesSetUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	env.addPoint(t, id, "wrist", 4)
	env.addPoint(t, id, "neck", 7)
	before := env.points(t, id)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"notes": "Wrist and neck pain"}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(noSuggestions), nil).Once()

	result, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "It has been like this for a week"})
	require.NoError(t, err)

	assert.Equal(t, before, env.points(t, id))
	assert.Equal(t, before, result.Session.PainPoints)
	assert.Equal(t, 0, result.HistorySlot.Index)
	assert.Equal(t, before, result.HistorySlot.PainPoints)
	require.NotNil(t, result.HistorySlot.Notes)
	assert.Equal(t, "Wrist and neck pain", *result.HistorySlot.Notes)
	assert.Empty(t, result.UnresolvedLandmarks)

	env.provider.AssertExpectations(t)
}

func TestProcessMessage_EmptyPainPointsClearsSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	env.addPoint(t, id, "wrist", 4)
	env.addPoint(t, id, "neck", 7)
	for _, msg := range []string{"one", "two", "three"} {
		_, err := env.sessions.AppendHistory(ctx, id, domain.HistorySlotCreate{UserMessage: msg})
		require.NoError(t, err)
	}

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"painPoints": []}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(noSuggestions), nil).Once()

	result, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "Actually nothing hurts anymore"})
	require.NoError(t, err)

	assert.Empty(t, result.Session.PainPoints)
	assert.Empty(t, env.points(t, id))
	assert.Equal(t, 3, result.HistorySlot.Index)
	assert.Empty(t, result.HistorySlot.PainPoints)

	history, err := env.historyRepo.ListBySession(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Empty(t, history[3].PainPoints)
	assert.Len(t, history[2].PainPoints, 2)
}

func TestProcessMessage_ReplaceResolvesLandmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	env.addPoint(t, id, "old", 2)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{
		"painPoints": [
			{"landmark": "lower_back", "label": "Dull ache", "type": "dull", "rating": 6},
			{"landmark": "left_spleen", "label": "Stitch", "type": "sharp", "rating": 3}
		]
	}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(noSuggestions), nil).Once()

	result, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "My lower back aches"})
	require.NoError(t, err)

	require.Len(t, result.Session.PainPoints, 1)
	p := result.Session.PainPoints[0]
	assert.Equal(t, domain.Vec3{X: 0, Y: -0.4, Z: 0.1}, p.Position)
	assert.Equal(t, "Dull ache", p.Label)
	assert.Equal(t, domain.PainTypeDull, p.Type)
	assert.Equal(t, 6, p.Rating)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, []string{"left_spleen"}, result.UnresolvedLandmarks)
	assert.Equal(t, result.Session.PainPoints, result.HistorySlot.PainPoints)
}

func TestProcessMessage_HistoryIndicesAreContiguous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	r := env.reconciler(ReconcilerOptions{})

	responses := []string{
		`{"painPoints": [{"landmark": "left_knee", "label": "Knee", "type": "sharp", "rating": 5}]}`,
		`{"notes": "knee"}`,
		`{"painPoints": []}`,
		`{}`,
		`{"painPoints": null}`,
	}
	for _, content := range responses {
		env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(content), nil).Once()
	}
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(noSuggestions), nil)

	for i := range responses {
		result, err := r.ProcessMessage(ctx, id, MessageInput{Message: "message"})
		require.NoError(t, err)
		assert.Equal(t, i, result.HistorySlot.Index)
	}

	history, err := env.historyRepo.ListBySession(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, len(responses))
	for i, slot := range history {
		assert.Equal(t, i, slot.Index)
	}
}

func TestProcessMessage_SuggestionFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)

	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(`{"suggestions": [
		{"title": "When did it start?", "description": "Ask about onset."},
		{"title": "What helps?", "description": "Ask about relief."}
	]}`), nil).Once()
	seeded, err := env.suggestions.Generate(ctx, id)
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	before, err := env.suggestRepo.ListBySession(ctx, id)
	require.NoError(t, err)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"painPoints": [{"landmark": "lower_back", "label": "Ache", "type": "dull", "rating": 4}]}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(nil, errors.New("model overloaded")).Once()

	result, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "My back aches"})
	require.NoError(t, err)
	assert.Len(t, result.Session.PainPoints, 1)
	assert.Equal(t, 0, result.HistorySlot.Index)
	assert.Nil(t, result.Suggestions)

	after, err := env.suggestRepo.ListBySession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProcessMessage_InvalidSuggestionOutputIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(`{"suggestions": "none"}`), nil).Once()

	_, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "hello"})
	require.NoError(t, err)
}

func TestProcessMessage_InvalidModelOutputAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	env.addPoint(t, id, "wrist", 4)
	before := env.points(t, id)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"painPoints": [{"landmark": "lower_back", "label": "x", "type": "dull", "rating": 42}]}`), nil).Once()

	_, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrInvalidModelOutput)

	assert.Equal(t, before, env.points(t, id))
	n, err := env.historyRepo.CountBySession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	env.provider.AssertNotCalled(t, "Invoke", mock.Anything, suggestionCall)
}

func TestProcessMessage_ModelFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(nil, errors.New("timeout")).Once()

	_, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestProcessMessage_UnknownSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(context.Background(), uuid.New(), MessageInput{Message: "hello"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	env.provider.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestProcessMessage_UnknownProvider(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	_, err := env.reconciler(ReconcilerOptions{}).ProcessMessage(context.Background(), id, MessageInput{Message: "hello", Provider: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessMessage_PersistenceFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	env.addPoint(t, id, "wrist", 4)
	before := env.points(t, id)

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"painPoints": []}`), nil).Once()

	broken := failingHistoryRepo{HistoryRepository: env.historyRepo, err: domain.ErrPersistence}
	_, err := env.reconcilerWithHistory(broken, ReconcilerOptions{}).ProcessMessage(ctx, id, MessageInput{Message: "clear it"})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	// the delete of the old points was rolled back with the failed append
	assert.Equal(t, before, env.points(t, id))
}

func TestProcessMessage_AsyncSuggestionsHoldLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	r := env.reconciler(ReconcilerOptions{AsyncSuggestions: true, SuggestionTimeout: 5 * time.Second})

	release := make(chan time.Time)
	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{}`), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).
		WaitUntil(release).
		Return(reply(`{"suggestions": [{"title": "Onset?", "description": "When did it start?"}]}`), nil).Once()

	result, err := r.ProcessMessage(ctx, id, MessageInput{Message: "hello"})
	require.NoError(t, err)
	assert.Nil(t, result.Suggestions)

	// the refresh is still running, so the session stays locked
	lockCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = env.locker.Lock(lockCtx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	r.Wait()

	suggestions, err := env.suggestRepo.ListBySession(ctx, id)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Onset?", suggestions[0].Title)
	assert.Equal(t, 0, env.locker.held())
}

func TestProcessMessage_ConcurrentMessagesAreSerialized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)
	r := env.reconciler(ReconcilerOptions{})

	env.provider.On("Invoke", mock.Anything, sessionCall).Return(reply(`{"painPoints": [{"landmark": "lower_back", "label": "Ache", "type": "dull", "rating": 4}]}`), nil)
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(noSuggestions), nil)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.ProcessMessage(ctx, id, MessageInput{Message: "again"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := env.historyRepo.ListBySession(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, n)
	for i, slot := range history {
		assert.Equal(t, i, slot.Index)
	}
	assert.Len(t, env.points(t, id), 1)
}
