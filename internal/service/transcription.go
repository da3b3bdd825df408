package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/speech"
	"github.com/rs/zerolog/log"
)

const defaultAudioMIME = "audio/webm"

// TranscriptionResult is returned to the UI for every transcription attempt
type TranscriptionResult struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TranscriptionService turns recorded audio into message text. It never
// fails: errors come back as an unsuccessful result with empty text.
type TranscriptionService struct {
	transcriber speech.Transcriber
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(transcriber speech.Transcriber) *TranscriptionService {
	return &TranscriptionService{transcriber: transcriber}
}

// Transcribe decodes a base64 data URL and transcribes it
func (s *TranscriptionService) Transcribe(ctx context.Context, audioData string) TranscriptionResult {
	text, err := s.transcribe(ctx, audioData)
	if err != nil {
		log.Error().Err(err).Msg("Speech-to-text failed")
		return TranscriptionResult{Text: "", Success: false, Error: err.Error()}
	}

	log.Info().Int("text_length", len(text)).Msg("Speech-to-text succeeded")
	return TranscriptionResult{Text: text, Success: true}
}

func (s *TranscriptionService) transcribe(ctx context.Context, audioData string) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("%w: no transcriber configured", domain.ErrTranscription)
	}

	audio, mimeType, err := DecodeAudioDataURL(audioData)
	if err != nil {
		return "", err
	}

	text, err := s.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	return strings.TrimSpace(text), nil
}

// DecodeAudioDataURL splits "data:audio/webm;base64,<payload>" into bytes
// and MIME type. The MIME type defaults to audio/webm.
func DecodeAudioDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || payload == "" {
		return nil, "", fmt.Errorf("%w: invalid audio data format", domain.ErrTranscription)
	}

	mimeType := defaultAudioMIME
	if meta, found := strings.CutPrefix(header, "data:"); found {
		if mt, _, _ := strings.Cut(meta, ";"); mt != "" {
			mimeType = mt
		}
	}

	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 audio: %v", domain.ErrTranscription, err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("%w: empty audio", domain.ErrTranscription)
	}
	return audio, mimeType, nil
}
