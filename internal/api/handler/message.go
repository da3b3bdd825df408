package handler

import (
	"net/http"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/api/middleware"
	"github.com/Rrens/pain-mapper/internal/api/response"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/service"
)

// MessageRequest is one chat message from the UI
type MessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
	// Landmarks replaces the default catalog for this message when set
	Landmarks []domain.Landmark `json:"landmarks,omitempty" validate:"omitempty,dive"`
	Provider  string            `json:"provider,omitempty"`
	Model     string            `json:"model,omitempty"`
}

// MessageHandler handles the chat endpoint
type MessageHandler struct {
	reconciler *service.Reconciler
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(reconciler *service.Reconciler) *MessageHandler {
	return &MessageHandler{reconciler: reconciler}
}

// Process reconciles a user message into the session
func (h *MessageHandler) Process(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		response.BadRequest(w, "missing session ID")
		return
	}

	var req MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	in := service.MessageInput{
		Message:  req.Message,
		Provider: req.Provider,
		Model:    req.Model,
	}
	if len(req.Landmarks) > 0 {
		catalog, err := anatomy.NewCatalog(req.Landmarks)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		in.Catalog = catalog
	}

	result, err := h.reconciler.ProcessMessage(r.Context(), sessionID, in)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, result)
}
