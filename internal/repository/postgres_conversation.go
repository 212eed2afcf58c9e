package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sonanta/internal/model"
	"time"

	"github.com/google/uuid"
)

type postgresConversationRepository struct {
	db *sql.DB
}

// NewPostgresConversationRepository creates a new PostgreSQL conversation repository
func NewPostgresConversationRepository(db *sql.DB) ConversationRepository {
	return &postgresConversationRepository{db: db}
}

const conversationColumns = `
	id, user_id, elevenlabs_conversation_id, title, transcript, summary,
	duration_seconds, audio_url, metadata, created_at, updated_at, ended_at
`

// Create creates a new conversation record
func (r *postgresConversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	query := `
		INSERT INTO conversations (
			id, user_id, elevenlabs_conversation_id, title, transcript, summary,
			duration_seconds, audio_url, metadata, created_at, updated_at, ended_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	transcriptJSON, err := json.Marshal(orEmptyTurns(conv.Transcript))
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	metadataJSON, err := json.Marshal(orEmptyMap(conv.Metadata))
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		conv.ID,
		conv.UserID,
		conv.ElevenLabsConversationID,
		conv.Title,
		transcriptJSON,
		conv.Summary,
		conv.DurationSeconds,
		conv.AudioURL,
		metadataJSON,
		conv.CreatedAt,
		conv.UpdatedAt,
		conv.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

// GetByID retrieves a conversation by id, scoped to the owning user
func (r *postgresConversationRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 AND user_id = $2`
	return scanConversation(r.db.QueryRowContext(ctx, query, id, userID))
}

// GetByElevenLabsID retrieves a conversation by provider conversation id
func (r *postgresConversationRepository) GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE elevenlabs_conversation_id = $1`
	return scanConversation(r.db.QueryRowContext(ctx, query, elevenLabsID))
}

// ListByUser retrieves conversations for a user, newest first
func (r *postgresConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	convs := make([]model.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}

	return convs, rows.Err()
}

// UpdateFromWebhook applies the single end-of-conversation update.
// Only fields present in the payload are written; ended_at and
// updated_at are always refreshed.
func (r *postgresConversationRepository) UpdateFromWebhook(ctx context.Context, id uuid.UUID, update *ConversationUpdate) error {
	transcriptJSON, err := json.Marshal(orEmptyTurns(update.Transcript))
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	now := time.Now().UTC()
	query := `UPDATE conversations SET transcript = $1, ended_at = $2, updated_at = $3`
	args := []interface{}{transcriptJSON, now, now}

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, len(args)+1)
		args = append(args, value)
	}

	if update.Summary != nil {
		appendSet("summary", *update.Summary)
	}
	if update.DurationSeconds != nil {
		appendSet("duration_seconds", *update.DurationSeconds)
	}
	if update.AudioURL != nil {
		appendSet("audio_url", *update.AudioURL)
	}
	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Metadata != nil {
		metadataJSON, err := json.Marshal(update.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		appendSet("metadata", metadataJSON)
	}

	query += fmt.Sprintf(" WHERE id = $%d", len(args)+1)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	return nil
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var conv model.Conversation
	var transcriptJSON, metadataJSON []byte

	err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.ElevenLabsConversationID,
		&conv.Title,
		&transcriptJSON,
		&conv.Summary,
		&conv.DurationSeconds,
		&conv.AudioURL,
		&metadataJSON,
		&conv.CreatedAt,
		&conv.UpdatedAt,
		&conv.EndedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	if len(transcriptJSON) > 0 {
		if err := json.Unmarshal(transcriptJSON, &conv.Transcript); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
	}
	if conv.Transcript == nil {
		conv.Transcript = []model.ConversationTurn{}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &conv.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &conv, nil
}

func orEmptyTurns(turns []model.ConversationTurn) []model.ConversationTurn {
	if turns == nil {
		return []model.ConversationTurn{}
	}
	return turns
}
