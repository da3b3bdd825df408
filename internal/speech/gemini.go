package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const transcribeInstruction = "Transcribe this audio recording verbatim. Return only the spoken words, without commentary or formatting."

// Gemini transcribes audio with a multimodal Gemini model
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates a Gemini transcriber
func NewGemini(cfg config.GeminiConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{apiKey: cfg.APIKey, model: model}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini transcriber is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	var temperature float32 = 0
	model.Temperature = &temperature

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(transcribeInstruction),
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcription error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// New picks the transcriber named by cfg.Provider
func New(cfg config.SpeechConfig) (Transcriber, error) {
	switch cfg.Provider {
	case "", "elevenlabs":
		return NewElevenLabs(cfg.ElevenLabs), nil
	case "gemini":
		return NewGemini(cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("unsupported speech provider: %q", cfg.Provider)
	}
}
