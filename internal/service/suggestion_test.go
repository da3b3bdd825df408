package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func suggestionsJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title": "Question %d", "description": "Detail %d"}`, i, i)
	}
	return `{"suggestions": [` + strings.Join(items, ",") + `]}`
}

func TestSuggestionService_GenerateIndices(t *testing.T) {
	for n := 0; n <= domain.MaxSuggestions; n++ {
		t.Run(fmt.Sprintf("%d suggestions", n), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			id := env.newSession(t)

			env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(suggestionsJSON(n)), nil).Once()

			got, err := env.suggestions.Generate(ctx, id)
			require.NoError(t, err)
			require.Len(t, got, n)

			stored, err := env.suggestions.List(ctx, id)
			require.NoError(t, err)
			require.Len(t, stored, n)
			for i, s := range stored {
				assert.Equal(t, i, s.Index)
				assert.Equal(t, fmt.Sprintf("Question %d", i), s.Title)
			}
		})
	}
}

func TestSuggestionService_ReplacesPreviousSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)

	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(suggestionsJSON(3)), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(suggestionsJSON(1)), nil).Once()

	_, err := env.suggestions.Generate(ctx, id)
	require.NoError(t, err)
	_, err = env.suggestions.Generate(ctx, id)
	require.NoError(t, err)

	stored, err := env.suggestions.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 0, stored[0].Index)
}

func TestSuggestionService_TooManyLeavesSetUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newSession(t)

	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(suggestionsJSON(2)), nil).Once()
	env.provider.On("Invoke", mock.Anything, suggestionCall).Return(reply(suggestionsJSON(domain.MaxSuggestions+1)), nil).Once()

	_, err := env.suggestions.Generate(ctx, id)
	require.NoError(t, err)
	before, err := env.suggestions.List(ctx, id)
	require.NoError(t, err)

	_, err = env.suggestions.Generate(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidModelOutput)

	after, err := env.suggestions.List(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSuggestionService_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.suggestions.Generate(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.suggestions.List(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	env.provider.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}
