package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/api/handler"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data to be a map")
	assert.Equal(t, "ok", data["status"])
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ready", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
			rec := httptest.NewRecorder()

			handler.ReadyCheck(stubPinger{err: tt.err})(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestListLandmarks(t *testing.T) {
	catalog, err := anatomy.NewCatalog([]domain.Landmark{
		{Name: "neck", Label: "Neck", Category: "head"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/landmarks", nil)
	rec := httptest.NewRecorder()

	handler.ListLandmarks(catalog)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	landmarks := data["landmarks"].([]any)
	require.Len(t, landmarks, 1)
	assert.Equal(t, "neck", landmarks[0].(map[string]any)["name"])
}
