package model

import (
	"time"

	"github.com/google/uuid"
)

// Transcript status values. A memo starts pending and moves to exactly
// one terminal state; terminal states are never left.
const (
	TranscriptPending   = "pending"
	TranscriptCompleted = "completed"
	TranscriptFailed    = "failed"
)

// VoiceMemo represents an uploaded voice recording and its derived
// enrichment (transcript, tags).
type VoiceMemo struct {
	ID                 uuid.UUID              `json:"id"`
	UserID             uuid.UUID              `json:"user_id"`
	AudioURL           string                 `json:"audio_url"`
	Title              *string                `json:"title,omitempty"`
	DurationSeconds    *float64               `json:"duration_seconds,omitempty"`
	FileSizeBytes      *int                   `json:"file_size_bytes,omitempty"`
	Transcript         *string                `json:"transcript,omitempty"`
	TranscriptStatus   string                 `json:"transcript_status"`
	TranscriptMetadata map[string]interface{} `json:"transcript_metadata,omitempty"`
	Tags               []string               `json:"tags"`
	Summary            *string                `json:"summary,omitempty"`
	Metadata           map[string]interface{} `json:"metadata"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}
