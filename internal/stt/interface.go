package stt

import "context"

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe transcribes an audio buffer and returns the result
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)

	// Name returns the name of the provider (e.g., "elevenlabs")
	Name() string
}
