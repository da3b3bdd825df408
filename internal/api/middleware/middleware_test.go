package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/pain-mapper/internal/repository/redis"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	decision redis.Decision
	err      error
	keys     []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (redis.Decision, error) {
	f.keys = append(f.keys, key)
	return f.decision, f.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	reset := time.Unix(1700000060, 0)

	tests := []struct {
		name   string
		lim    *fakeLimiter
		status int
	}{
		{"allowed", &fakeLimiter{decision: redis.Decision{Allowed: true, Limit: 10, Remaining: 9, ResetAt: reset}}, http.StatusOK},
		{"denied", &fakeLimiter{decision: redis.Decision{Allowed: false, Limit: 10, ResetAt: reset}}, http.StatusTooManyRequests},
		{"limiter down fails open", &fakeLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			rec := httptest.NewRecorder()

			NewRateLimitMiddleware(tt.lim).Limit(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, []string{"203.0.113.7"}, tt.lim.keys)
			if tt.lim.err == nil {
				assert.Equal(t, "1700000060", rec.Header().Get("X-RateLimit-Reset"))
			}
		})
	}
}

func TestSessionContext(t *testing.T) {
	id := uuid.New()
	var got uuid.UUID

	r := chi.NewRouter()
	r.With(SessionContext).Get("/sessions/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = GetSessionID(r.Context())
		require.True(t, ok)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
