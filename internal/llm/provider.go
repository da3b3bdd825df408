package llm

import "context"

// Request is a single structured-output model call
type Request struct {
	Prompt            string
	SystemInstruction string
	// Schema describes the JSON object the model must return
	Schema *Schema
	// Model overrides the provider default when set
	Model string
}

// Response contains the raw model output and call metadata
type Response struct {
	// Content is the JSON text returned by the model
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Invoke sends the prompt and asks for output matching req.Schema
	Invoke(ctx context.Context, req Request) (*Response, error)
}
