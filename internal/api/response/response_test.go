package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("session: %w", domain.ErrNotFound), http.StatusNotFound},
		{"invalid input", fmt.Errorf("%w: rating", domain.ErrInvalidInput), http.StatusBadRequest},
		{"invalid model output", fmt.Errorf("wrap: %w", domain.ErrInvalidModelOutput), http.StatusBadGateway},
		{"model unavailable", fmt.Errorf("wrap: %w", domain.ErrModelUnavailable), http.StatusBadGateway},
		{"persistence", fmt.Errorf("wrap: %w", domain.ErrPersistence), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestFromError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, fmt.Errorf("%w: dial tcp 10.0.0.5:5432", domain.ErrPersistence))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
