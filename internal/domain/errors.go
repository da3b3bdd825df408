package domain

import "errors"

var (
	// ErrNotFound is returned when a session or pain point does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidModelOutput is returned when a model response does not match
	// the expected output schema
	ErrInvalidModelOutput = errors.New("invalid model output")

	// ErrModelUnavailable wraps failed model calls (network, auth, timeouts)
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPersistence wraps storage failures
	ErrPersistence = errors.New("persistence failure")

	// ErrTranscription wraps speech-to-text failures
	ErrTranscription = errors.New("transcription failure")

	// ErrInvalidInput is returned for requests that fail validation
	ErrInvalidInput = errors.New("invalid input")
)
