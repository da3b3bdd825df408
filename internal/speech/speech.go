// Package speech turns recorded audio into text
package speech

import "context"

// Transcriber converts audio bytes to text
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
