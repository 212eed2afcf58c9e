package stt

// Result represents the result of a speech-to-text transcription
type Result struct {
	Text         string  // The transcribed text
	LanguageCode string  // Detected language (e.g., "en"), may be empty
	Confidence   float64 // Language detection probability (0.0-1.0), may be 0 if not provided
	Provider     string  // The provider used
	RawResponse  string  // Raw response from the provider (for debugging/logging)
}
