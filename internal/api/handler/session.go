package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Rrens/pain-mapper/internal/api/middleware"
	"github.com/Rrens/pain-mapper/internal/api/response"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionHandler handles session, pain point and history endpoints
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// List returns sessions, most recently updated first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	sessions, err := h.sessionService.List(r.Context(), limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, sessions)
}

// Create creates a new session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Body is optional
	var req domain.SessionCreate
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}

	session, err := h.sessionService.Create(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, session)
}

// Get returns the session with its pain points
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	view, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, view)
}

// GetFull returns the session with pain points, history and suggestions
func (h *SessionHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	detail, err := h.sessionService.GetDetail(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, detail)
}

// ListHistory returns the session history ordered by index
func (h *SessionHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	history, err := h.sessionService.ListHistory(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, history)
}

// CreateHistory records a history slot without a model call
func (h *SessionHandler) CreateHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	var req domain.HistorySlotCreate
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	slot, err := h.sessionService.AppendHistory(r.Context(), sessionID, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, slot)
}

// AddPainPoint places a pain point from the body model
func (h *SessionHandler) AddPainPoint(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	var req domain.PainPointCreate
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	point, err := h.sessionService.AddPainPoint(r.Context(), sessionID, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, point)
}

// UpdatePainPoint edits a pain point
func (h *SessionHandler) UpdatePainPoint(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	pointID, err := uuid.Parse(chi.URLParam(r, "painPointID"))
	if err != nil {
		response.BadRequest(w, "invalid pain point ID")
		return
	}

	var req domain.PainPointUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	point, err := h.sessionService.UpdatePainPoint(r.Context(), sessionID, pointID, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, point)
}

// DeletePainPoint removes a pain point
func (h *SessionHandler) DeletePainPoint(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	pointID, err := uuid.Parse(chi.URLParam(r, "painPointID"))
	if err != nil {
		response.BadRequest(w, "invalid pain point ID")
		return
	}

	if err := h.sessionService.DeletePainPoint(r.Context(), sessionID, pointID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}
