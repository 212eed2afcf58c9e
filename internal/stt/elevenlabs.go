package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultElevenLabsURL = "https://api.elevenlabs.io/v1/speech-to-text"
	elevenLabsModelID    = "scribe_v1"
)

// ElevenLabsProvider implements STT using the ElevenLabs Speech-to-Text API
type ElevenLabsProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewElevenLabsProvider creates a new ElevenLabs STT provider. An empty
// url selects the production endpoint.
func NewElevenLabsProvider(apiKey, url string) *ElevenLabsProvider {
	if url == "" {
		url = defaultElevenLabsURL
	}
	return &ElevenLabsProvider{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (p *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

// elevenLabsResponse represents the ElevenLabs STT API response
type elevenLabsResponse struct {
	Text                string  `json:"text"`
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
}

// Transcribe sends an audio buffer to the ElevenLabs STT API as a
// multipart request tagged with the fixed model id.
func (p *ElevenLabsProvider) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error) {
	startTime := time.Now()

	log.Printf("[ElevenLabs STT] Processing audio: size=%d bytes, mime=%s", len(audio), mimeType)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := "audio." + extensionForMIME(mimeType)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio to form: %w", err)
	}
	if err := writer.WriteField("model_id", elevenLabsModelID); err != nil {
		return nil, fmt.Errorf("failed to write model_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to ElevenLabs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ElevenLabs STT] API error: status %d, body: %s", resp.StatusCode, truncate(string(body), 500))
		return &Result{
			Provider:    p.Name(),
			RawResponse: string(body),
		}, fmt.Errorf("ElevenLabs API returned status %d: %s", resp.StatusCode, string(body))
	}

	var sttResp elevenLabsResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		log.Printf("[ElevenLabs STT] Failed to parse response. Raw body: %s", truncate(string(body), 500))
		return &Result{
			Provider:    p.Name(),
			RawResponse: string(body),
		}, fmt.Errorf("failed to parse ElevenLabs response: %w", err)
	}

	text := strings.TrimSpace(sttResp.Text)
	log.Printf("[ElevenLabs STT] Transcription successful: language=%s, probability=%.2f, length=%d, duration=%v",
		sttResp.LanguageCode, sttResp.LanguageProbability, len(text), time.Since(startTime))

	return &Result{
		Text:         text,
		LanguageCode: sttResp.LanguageCode,
		Confidence:   sttResp.LanguageProbability,
		Provider:     p.Name(),
		RawResponse:  string(body),
	}, nil
}

// extensionForMIME maps a known audio MIME type back to an extension
// for the multipart filename.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "audio/webm":
		return "webm"
	case "audio/mp4":
		return "m4a"
	case "audio/ogg":
		return "ogg"
	case "audio/mp3", "audio/mpeg":
		return "mp3"
	case "audio/wav":
		return "wav"
	default:
		return "webm"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
