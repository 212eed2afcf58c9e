package model

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is a single turn in a conversation transcript.
type ConversationTurn struct {
	Role    string  `json:"role"`
	Message string  `json:"message"`
	TimeSec float64 `json:"time_in_call_secs,omitempty"`
}

// Conversation represents one voice session with the conversational
// agent. Created when a signed session URL is issued, updated once by
// the end-of-conversation webhook, read-only afterward.
type Conversation struct {
	ID                       uuid.UUID              `json:"id"`
	UserID                   uuid.UUID              `json:"user_id"`
	ElevenLabsConversationID *string                `json:"elevenlabs_conversation_id,omitempty"`
	Title                    *string                `json:"title,omitempty"`
	Transcript               []ConversationTurn     `json:"transcript"`
	Summary                  *string                `json:"summary,omitempty"`
	DurationSeconds          *int                   `json:"duration_seconds,omitempty"`
	AudioURL                 *string                `json:"audio_url,omitempty"`
	Metadata                 map[string]interface{} `json:"metadata"`
	CreatedAt                time.Time              `json:"created_at"`
	UpdatedAt                time.Time              `json:"updated_at"`
	EndedAt                  *time.Time             `json:"ended_at,omitempty"`
}
