package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SessionUpdate is the decoded reconciliation response
type SessionUpdate struct {
	PainPoints domain.PainPointChange
	Notes      *string
}

// UnmarshalJSON keeps an absent (or null) painPoints apart from an empty one
func (u *SessionUpdate) UnmarshalJSON(data []byte) error {
	var raw struct {
		PainPoints json.RawMessage `json:"painPoints"`
		Notes      *string         `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.Notes = raw.Notes
	u.PainPoints = domain.Unchanged()

	trimmed := bytes.TrimSpace(raw.PainPoints)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var proposals []domain.ProposedPainPoint
	if err := json.Unmarshal(trimmed, &proposals); err != nil {
		return fmt.Errorf("painPoints: %w", err)
	}
	u.PainPoints = domain.Replaced(proposals)
	return nil
}

// Validate checks every proposed pain point
func (u *SessionUpdate) Validate() error {
	for i, p := range u.PainPoints.Proposals() {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("painPoints[%d]: %w", i, err)
		}
	}
	return nil
}

// SuggestionItem is one suggested follow-up question
type SuggestionItem struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,min=1,max=500"`
}

// SuggestionsResult is the decoded suggestion response
type SuggestionsResult struct {
	Suggestions []SuggestionItem `json:"suggestions" validate:"required,max=4,dive"`
}

type validatable interface {
	Validate() error
}

// InvokeStructured calls the provider and decodes its answer into out.
// Call failures are reported as domain.ErrModelUnavailable, decode and
// validation failures as domain.ErrInvalidModelOutput.
func InvokeStructured(ctx context.Context, provider Provider, req Request, out any) (*Response, error) {
	resp, err := provider.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s invocation failed: %w", domain.ErrModelUnavailable, provider.Name(), err)
	}

	if err := DecodeStructured(resp.Content, out); err != nil {
		return resp, err
	}
	return resp, nil
}

// DecodeStructured parses JSON model output into out and validates it
func DecodeStructured(content string, out any) error {
	text := ExtractJSON(content)
	if text == "" {
		return fmt.Errorf("%w: empty response", domain.ErrInvalidModelOutput)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
	}

	var err error
	if v, ok := out.(validatable); ok {
		err = v.Validate()
	} else {
		err = validate.Struct(out)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
	}
	return nil
}

// ExtractJSON strips markdown code fences some models put around JSON
func ExtractJSON(content string) string {
	if s, ok := extractFromCodeBlock(content, "```json"); ok {
		return s
	}
	if s, ok := extractFromCodeBlock(content, "```"); ok {
		return s
	}
	return strings.TrimSpace(content)
}

func extractFromCodeBlock(content, startMarker string) (string, bool) {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return "", false
	}

	contentStart := startIdx + len(startMarker)
	endIdx := strings.Index(content[contentStart:], "```")
	if endIdx == -1 {
		return "", false
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx]), true
}
