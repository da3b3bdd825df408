package handler

import (
	"net/http"

	"github.com/Rrens/pain-mapper/internal/api/middleware"
	"github.com/Rrens/pain-mapper/internal/api/response"
	"github.com/Rrens/pain-mapper/internal/service"
)

type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// List returns the session's follow-up questions
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	suggestions, err := h.suggestionService.List(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, suggestions)
}

// Generate replaces the session's follow-up questions
func (h *SuggestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	suggestions, err := h.suggestionService.Generate(r.Context(), sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, suggestions)
}
