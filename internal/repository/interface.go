package repository

import (
	"context"
	"sonanta/internal/model"

	"github.com/google/uuid"
)

// MemoRepository defines the interface for voice memo data access.
// All reads and owner-scoped writes filter by user_id; a memo belonging
// to another user is indistinguishable from a missing one.
type MemoRepository interface {
	// Create creates a new voice memo record
	Create(ctx context.Context, memo *model.VoiceMemo) error

	// GetByID retrieves a memo by id, scoped to the owning user
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.VoiceMemo, error)

	// GetAny retrieves a memo by id without an ownership filter.
	// Used only by the background enrichment stages, which are not
	// acting on behalf of a caller.
	GetAny(ctx context.Context, id uuid.UUID) (*model.VoiceMemo, error)

	// ListByUser retrieves memos for a user, newest first, with
	// pagination. When tags is non-empty only memos whose tag set
	// contains every requested tag are returned.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, tags []string) ([]model.VoiceMemo, error)

	// UpdateTranscript applies a terminal transcription result. The
	// update only succeeds while the memo is still pending; it returns
	// false without error when the memo has already reached a terminal
	// state, so a lost race never overwrites a finished run.
	UpdateTranscript(ctx context.Context, id uuid.UUID, transcript, status string, metadata map[string]interface{}) (bool, error)

	// UpdateTags replaces the memo's tag list
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error

	// Delete removes a memo, scoped to the owning user. Returns false
	// when no row matched.
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	// Create creates a new conversation record
	Create(ctx context.Context, conv *model.Conversation) error

	// GetByID retrieves a conversation by id, scoped to the owning user
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Conversation, error)

	// GetByElevenLabsID retrieves a conversation by the provider's
	// conversation id. Used by the end-of-conversation webhook, which
	// carries no user identity.
	GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*model.Conversation, error)

	// ListByUser retrieves conversations for a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Conversation, error)

	// UpdateFromWebhook applies the single end-of-conversation update
	UpdateFromWebhook(ctx context.Context, id uuid.UUID, update *ConversationUpdate) error
}

// ConversationUpdate carries the fields delivered by the
// end-of-conversation webhook. Nil fields are left untouched.
type ConversationUpdate struct {
	Transcript      []model.ConversationTurn
	Summary         *string
	DurationSeconds *int
	AudioURL        *string
	Title           *string
	Metadata        map[string]interface{}
}
