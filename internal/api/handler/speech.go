package handler

import (
	"net/http"

	"github.com/Rrens/pain-mapper/internal/api/response"
	"github.com/Rrens/pain-mapper/internal/service"
)

// TranscribeRequest carries a base64 audio data URL
type TranscribeRequest struct {
	AudioData string `json:"audio_data" validate:"required"`
}

// SpeechHandler handles speech-to-text
type SpeechHandler struct {
	transcriptionService *service.TranscriptionService
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(transcriptionService *service.TranscriptionService) *SpeechHandler {
	return &SpeechHandler{transcriptionService: transcriptionService}
}

// Transcribe always answers 200 once the body parses; provider failures
// come back as success=false.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, h.transcriptionService.Transcribe(r.Context(), req.AudioData))
}
