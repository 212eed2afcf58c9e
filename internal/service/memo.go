package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"sonanta/internal/model"
	"sonanta/internal/repository"
	"sonanta/internal/storage"
	"sonanta/internal/stt"

	"github.com/google/uuid"
)

// ErrInvalidContentType is returned by Upload before any side effect
// when the content type is not on the audio allow-list.
var ErrInvalidContentType = errors.New("invalid file type")

// allowedContentTypes is the fixed allow-list for uploads
var allowedContentTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/mp3":  true,
	"audio/wav":  true,
	"audio/m4a":  true,
	"audio/webm": true,
}

// mimeTypes maps file extensions to the MIME type sent to the STT
// service. Unrecognized extensions fall back to audio/webm.
var mimeTypes = map[string]string{
	"webm": "audio/webm",
	"mp4":  "audio/mp4",
	"m4a":  "audio/mp4",
	"ogg":  "audio/ogg",
	"mp3":  "audio/mp3",
	"wav":  "audio/wav",
}

// ObjectStore is the object-store contract the pipeline consumes
type ObjectStore interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) error
	PublicURL(path string) string
	Download(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
	Bucket() string
}

// TagGenerator is the tag-generation contract the pipeline consumes
type TagGenerator interface {
	GenerateTags(ctx context.Context, transcript string) ([]string, error)
}

// VoiceMemoService orchestrates the voice memo pipeline: upload,
// persist, then a two-stage background enrichment (transcribe, tag)
// decoupled from the request that triggered it.
type VoiceMemoService struct {
	repo   repository.MemoRepository
	store  ObjectStore
	stt    stt.Provider
	tagger TagGenerator

	// scheduleTranscription detaches the transcription stage from the
	// upload request. Overridable in tests.
	scheduleTranscription func(memoID uuid.UUID)
}

// NewVoiceMemoService creates a new voice memo service
func NewVoiceMemoService(repo repository.MemoRepository, store ObjectStore, provider stt.Provider, tagger TagGenerator) *VoiceMemoService {
	s := &VoiceMemoService{
		repo:   repo,
		store:  store,
		stt:    provider,
		tagger: tagger,
	}
	s.scheduleTranscription = func(memoID uuid.UUID) {
		go s.Transcribe(context.Background(), memoID)
	}
	return s
}

// Upload validates and stores an uploaded audio blob, creates its
// tracking record with a pending transcript, and schedules the
// transcription stage. The enrichment stages are not awaited; callers
// observe their progress by re-fetching the memo.
func (s *VoiceMemoService) Upload(ctx context.Context, userID uuid.UUID, content []byte, filename, contentType string, title *string) (*model.VoiceMemo, error) {
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	now := time.Now().UTC()
	path := storage.ObjectPath(userID, filename, now)

	// Blob write first. A record-create failure after this point leaves
	// an orphaned blob, which we try to remove but tolerate.
	if err := s.store.Upload(ctx, path, content, contentType); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	if title == nil || *title == "" {
		title = &filename
	}
	size := len(content)

	memo := &model.VoiceMemo{
		ID:               uuid.New(),
		UserID:           userID,
		AudioURL:         s.store.PublicURL(path),
		Title:            title,
		FileSizeBytes:    &size,
		TranscriptStatus: model.TranscriptPending,
		Tags:             []string{},
		Metadata:         map[string]interface{}{"original_filename": filename},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, memo); err != nil {
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			log.Printf("[Memo] Failed to remove orphaned blob %s: %v", path, rmErr)
		}
		return nil, fmt.Errorf("failed to create voice memo record: %w", err)
	}

	log.Printf("[Memo] Uploaded voice memo %s for user %s (%d bytes)", memo.ID, userID, size)
	s.scheduleTranscription(memo.ID)

	return memo, nil
}

// Transcribe runs the transcription stage for a memo. Any failure is
// converted into a terminal failed status on the record; a memo never
// stays pending once this stage has started on it.
func (s *VoiceMemoService) Transcribe(ctx context.Context, memoID uuid.UUID) (result StageResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("transcription panicked: %v", r)
			s.markFailed(ctx, memoID, err)
			result = StageResult{Outcome: StageFailed, Err: err}
		}
	}()

	memo, err := s.repo.GetAny(ctx, memoID)
	if err != nil {
		return s.fail(ctx, memoID, fmt.Errorf("failed to load memo: %w", err))
	}
	if memo == nil {
		log.Printf("[Memo] Transcription requested for missing memo %s", memoID)
		return StageResult{Outcome: StageFailed, Err: fmt.Errorf("memo %s not found", memoID)}
	}
	if memo.TranscriptStatus != model.TranscriptPending {
		// Already claimed by another run, or terminal. Terminal states
		// are never re-entered.
		log.Printf("[Memo] Skipping transcription for memo %s (status=%s)", memoID, memo.TranscriptStatus)
		return StageResult{Outcome: StageSkipped}
	}
	if memo.AudioURL == "" {
		return s.fail(ctx, memoID, errors.New("no audio URL found"))
	}

	path := storage.PathFromPublicURL(memo.AudioURL, s.store.Bucket())
	if path == "" {
		return s.fail(ctx, memoID, fmt.Errorf("could not resolve storage path from %s", memo.AudioURL))
	}

	audio, err := s.store.Download(ctx, path)
	if err != nil {
		return s.fail(ctx, memoID, fmt.Errorf("failed to download audio: %w", err))
	}

	sttResult, err := s.stt.Transcribe(ctx, audio, mimeTypeForPath(path))
	if err != nil {
		return s.fail(ctx, memoID, fmt.Errorf("transcription failed: %w", err))
	}

	metadata := map[string]interface{}{
		"language":   sttResult.LanguageCode,
		"confidence": sttResult.Confidence,
	}
	updated, err := s.repo.UpdateTranscript(ctx, memoID, sttResult.Text, model.TranscriptCompleted, metadata)
	if err != nil {
		log.Printf("[Memo] Failed to persist transcript for memo %s: %v", memoID, err)
		return StageResult{Outcome: StageFailed, Err: err}
	}
	if !updated {
		// Lost the race to a concurrent run that already finished.
		log.Printf("[Memo] Memo %s was no longer pending, transcript discarded", memoID)
		return StageResult{Outcome: StageSkipped}
	}

	log.Printf("[Memo] Transcription completed for memo %s (language=%s, %d chars)",
		memoID, sttResult.LanguageCode, len(sttResult.Text))

	// Stage 2 is chained, not independently scheduled. Its failures do
	// not revert this stage's success.
	s.GenerateTags(ctx, memoID)

	return StageResult{Outcome: StageCompleted}
}

// GenerateTags runs the tag-generation stage for a memo. Tagging is
// best-effort enrichment: every failure is logged and swallowed.
func (s *VoiceMemoService) GenerateTags(ctx context.Context, memoID uuid.UUID) StageResult {
	memo, err := s.repo.GetAny(ctx, memoID)
	if err != nil {
		log.Printf("[Tags] Failed to load memo %s: %v", memoID, err)
		return StageResult{Outcome: StageFailed, Err: err}
	}
	if memo == nil || memo.Transcript == nil || *memo.Transcript == "" {
		// Guards against being invoked on a memo whose transcription
		// failed or never completed. Not an error.
		return StageResult{Outcome: StageSkipped}
	}

	tags, err := s.tagger.GenerateTags(ctx, *memo.Transcript)
	if err != nil {
		log.Printf("[Tags] Tag generation failed for memo %s: %v", memoID, err)
		return StageResult{Outcome: StageFailed, Err: err}
	}

	if err := s.repo.UpdateTags(ctx, memoID, tags); err != nil {
		log.Printf("[Tags] Failed to persist tags for memo %s: %v", memoID, err)
		return StageResult{Outcome: StageFailed, Err: err}
	}

	log.Printf("[Tags] Tagged memo %s: %v", memoID, tags)
	return StageResult{Outcome: StageCompleted}
}

// Get returns the memo only if the user owns it; a foreign memo is
// indistinguishable from a missing one.
func (s *VoiceMemoService) Get(ctx context.Context, memoID, userID uuid.UUID) (*model.VoiceMemo, error) {
	return s.repo.GetByID(ctx, memoID, userID)
}

// List returns the user's memos newest-first. When tags is non-empty
// only memos whose tag set contains every requested tag are returned.
func (s *VoiceMemoService) List(ctx context.Context, userID uuid.UUID, limit, offset int, tags []string) ([]model.VoiceMemo, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset, tags)
}

// Delete removes a memo and its backing audio blob. The blob removal
// is best effort. Returns false when the memo does not exist or is not
// owned by the user.
func (s *VoiceMemoService) Delete(ctx context.Context, memoID, userID uuid.UUID) (bool, error) {
	memo, err := s.repo.GetByID(ctx, memoID, userID)
	if err != nil {
		return false, err
	}
	if memo == nil {
		return false, nil
	}

	if memo.AudioURL != "" {
		if path := storage.PathFromPublicURL(memo.AudioURL, s.store.Bucket()); path != "" {
			if err := s.store.Remove(ctx, path); err != nil {
				log.Printf("[Memo] Failed to remove blob for memo %s: %v", memoID, err)
			}
		}
	}

	return s.repo.Delete(ctx, memoID, userID)
}

// fail records a terminal failed status with the error in the
// transcript metadata and reports the stage outcome.
func (s *VoiceMemoService) fail(ctx context.Context, memoID uuid.UUID, cause error) StageResult {
	s.markFailed(ctx, memoID, cause)
	return StageResult{Outcome: StageFailed, Err: cause}
}

func (s *VoiceMemoService) markFailed(ctx context.Context, memoID uuid.UUID, cause error) {
	log.Printf("[Memo] Transcription failed for memo %s: %v", memoID, cause)
	metadata := map[string]interface{}{"error": cause.Error()}
	if _, err := s.repo.UpdateTranscript(ctx, memoID, "", model.TranscriptFailed, metadata); err != nil {
		log.Printf("[Memo] Failed to mark memo %s as failed: %v", memoID, err)
	}
}

// mimeTypeForPath infers the MIME type for the STT request from the
// stored object's file extension.
func mimeTypeForPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "audio/webm"
}

// AllowedContentTypes lists the accepted upload MIME types, for error
// messages.
func AllowedContentTypes() []string {
	return []string{"audio/mpeg", "audio/mp3", "audio/wav", "audio/m4a", "audio/webm"}
}
