package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// maxTags caps how many tags a memo carries
const maxTags = 4

// defaultTag is substituted when no usable tag can be extracted
const defaultTag = "general"

const tagSystemPrompt = `Extract 1-4 relevant tags from the voice memo transcript.

Tag categories to consider:
- Emotions: happy, sad, anxious, grateful, excited, frustrated, peaceful
- Topics: work, family, health, money, relationship, goals, ideas
- Activities: planning, meeting, exercise, cooking, travel, reading
- Context: morning, evening, weekend, urgent, reflection

Rules:
- Single words only, lowercase
- Choose the most relevant tags for the content
- If unclear, use general tags like "personal" or "thoughts"
- Always return at least 1 tag

Return ONLY a JSON array, no other text. Example: ["work", "planning", "anxious"]`

// Tagger generates topical tags for a transcript using a chat
// completion model.
type Tagger struct {
	client *openai.Client
}

// NewTagger creates a new Tagger
func NewTagger(apiKey string) *Tagger {
	return &Tagger{client: openai.NewClient(apiKey)}
}

// GenerateTags asks the model for 1-4 topical tags for the transcript.
// The response is expected to be a JSON array of strings but may be
// malformed; a malformed response is recovered with a best-effort word
// extraction, never an error.
func (t *Tagger) GenerateTags(ctx context.Context, transcript string) ([]string, error) {
	req := openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: tagSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: transcript,
			},
		},
		Temperature: 0.3,
		MaxTokens:   50,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tag completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("tag completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[Tags] Raw response: %s", content)

	return ParseTags(content), nil
}

// ParseTags parses a tag response into a normalized tag list. It first
// tries the content as a literal JSON array of strings, then falls back
// to extracting alphanumeric tokens from the raw text. The result is
// always 1-4 lowercase, trimmed, non-empty tags.
func ParseTags(content string) []string {
	var tags []string

	var parsed []interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err == nil {
		for _, item := range parsed {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	} else {
		// Fallback: extract words from the raw response
		words := regexp.MustCompile(`\w+`).FindAllString(content, maxTags)
		tags = words
	}

	return normalizeTags(tags)
}

// normalizeTags lowercases, trims, drops empties, caps at maxTags, and
// substitutes the default tag when nothing survives.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, maxTags)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}

	if len(out) == 0 {
		out = append(out, defaultTag)
	}

	return out
}
