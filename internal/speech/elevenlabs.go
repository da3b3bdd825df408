package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Rrens/pain-mapper/internal/config"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabs calls the ElevenLabs speech-to-text endpoint
type ElevenLabs struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewElevenLabs creates an ElevenLabs transcriber
func NewElevenLabs(cfg config.ElevenLabsConfig) *ElevenLabs {
	model := cfg.Model
	if model == "" {
		model = "scribe_v2"
	}
	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

type elevenLabsResponse struct {
	Text string `json:"text"`
}

func (e *ElevenLabs) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("elevenlabs transcriber is not configured (missing API key)")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("model_id", e.model); err != nil {
		return "", fmt.Errorf("failed to write form: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="audio"`)
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to write form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to write form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/speech-to-text", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out elevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Text, nil
}
