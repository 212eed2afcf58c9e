package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sonanta/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresMemoRepository struct {
	db *sql.DB
}

// NewPostgresMemoRepository creates a new PostgreSQL memo repository
func NewPostgresMemoRepository(db *sql.DB) MemoRepository {
	return &postgresMemoRepository{db: db}
}

const memoColumns = `
	id, user_id, audio_url, title, duration_seconds, file_size_bytes,
	transcript, transcript_status, transcript_metadata, tags, summary,
	metadata, created_at, updated_at
`

// Create creates a new voice memo record
func (r *postgresMemoRepository) Create(ctx context.Context, memo *model.VoiceMemo) error {
	query := `
		INSERT INTO voice_memos (
			id, user_id, audio_url, title, duration_seconds, file_size_bytes,
			transcript, transcript_status, transcript_metadata, tags, summary,
			metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	transcriptMetaJSON, err := json.Marshal(orEmptyMap(memo.TranscriptMetadata))
	if err != nil {
		return fmt.Errorf("failed to marshal transcript_metadata: %w", err)
	}
	metadataJSON, err := json.Marshal(orEmptyMap(memo.Metadata))
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		memo.ID,
		memo.UserID,
		memo.AudioURL,
		memo.Title,
		memo.DurationSeconds,
		memo.FileSizeBytes,
		memo.Transcript,
		memo.TranscriptStatus,
		transcriptMetaJSON,
		pq.Array(memo.Tags),
		memo.Summary,
		metadataJSON,
		memo.CreatedAt,
		memo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create voice memo: %w", err)
	}

	return nil
}

// GetByID retrieves a memo by id, scoped to the owning user
func (r *postgresMemoRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.VoiceMemo, error) {
	query := `SELECT ` + memoColumns + ` FROM voice_memos WHERE id = $1 AND user_id = $2`
	return scanMemo(r.db.QueryRowContext(ctx, query, id, userID))
}

// GetAny retrieves a memo by id without an ownership filter
func (r *postgresMemoRepository) GetAny(ctx context.Context, id uuid.UUID) (*model.VoiceMemo, error) {
	query := `SELECT ` + memoColumns + ` FROM voice_memos WHERE id = $1`
	return scanMemo(r.db.QueryRowContext(ctx, query, id))
}

// ListByUser retrieves memos for a user with pagination and an optional
// tag containment filter
func (r *postgresMemoRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, tags []string) ([]model.VoiceMemo, error) {
	query := `SELECT ` + memoColumns + ` FROM voice_memos WHERE user_id = $1`
	args := []interface{}{userID}

	if len(tags) > 0 {
		// Set containment: the stored tag array must include every
		// requested tag.
		query += fmt.Sprintf(" AND tags @> $%d", len(args)+1)
		args = append(args, pq.Array(tags))
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice memos: %w", err)
	}
	defer rows.Close()

	memos := make([]model.VoiceMemo, 0)
	for rows.Next() {
		memo, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, *memo)
	}

	return memos, rows.Err()
}

// UpdateTranscript applies a terminal transcription result. The WHERE
// clause doubles as the per-memo enrichment lease: only a pending memo
// can be moved, so a second run observes zero affected rows and backs
// off instead of overwriting a finished one.
func (r *postgresMemoRepository) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript, status string, metadata map[string]interface{}) (bool, error) {
	query := `
		UPDATE voice_memos
		SET transcript = $1, transcript_status = $2, transcript_metadata = $3, updated_at = $4
		WHERE id = $5 AND transcript_status = 'pending'
	`

	metadataJSON, err := json.Marshal(orEmptyMap(metadata))
	if err != nil {
		return false, fmt.Errorf("failed to marshal transcript_metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, transcript, status, metadataJSON, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update transcript: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// UpdateTags replaces the memo's tag list
func (r *postgresMemoRepository) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	query := `UPDATE voice_memos SET tags = $1, updated_at = $2 WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(tags), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}

	return nil
}

// Delete removes a memo, scoped to the owning user
func (r *postgresMemoRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM voice_memos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete voice memo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemo(row rowScanner) (*model.VoiceMemo, error) {
	var memo model.VoiceMemo
	var transcriptMetaJSON, metadataJSON []byte
	var tags pq.StringArray

	err := row.Scan(
		&memo.ID,
		&memo.UserID,
		&memo.AudioURL,
		&memo.Title,
		&memo.DurationSeconds,
		&memo.FileSizeBytes,
		&memo.Transcript,
		&memo.TranscriptStatus,
		&transcriptMetaJSON,
		&tags,
		&memo.Summary,
		&metadataJSON,
		&memo.CreatedAt,
		&memo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan voice memo: %w", err)
	}

	memo.Tags = []string(tags)
	if memo.Tags == nil {
		memo.Tags = []string{}
	}
	if len(transcriptMetaJSON) > 0 {
		if err := json.Unmarshal(transcriptMetaJSON, &memo.TranscriptMetadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript_metadata: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &memo.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &memo, nil
}

func orEmptyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
