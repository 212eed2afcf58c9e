package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sonanta/internal/model"
	"sonanta/internal/repository"
	"sonanta/internal/stt"

	"github.com/google/uuid"
)

// fakeMemoRepo is an in-memory MemoRepository honoring the same
// status-guarded transcript update as the Postgres implementation.
type fakeMemoRepo struct {
	memos     map[uuid.UUID]*model.VoiceMemo
	createErr error
	getErr    error
	updateErr error
}

func newFakeMemoRepo() *fakeMemoRepo {
	return &fakeMemoRepo{memos: make(map[uuid.UUID]*model.VoiceMemo)}
}

func (r *fakeMemoRepo) Create(ctx context.Context, memo *model.VoiceMemo) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *memo
	r.memos[memo.ID] = &copied
	return nil
}

func (r *fakeMemoRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.VoiceMemo, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	memo, ok := r.memos[id]
	if !ok || memo.UserID != userID {
		return nil, nil
	}
	copied := *memo
	return &copied, nil
}

func (r *fakeMemoRepo) GetAny(ctx context.Context, id uuid.UUID) (*model.VoiceMemo, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	memo, ok := r.memos[id]
	if !ok {
		return nil, nil
	}
	copied := *memo
	return &copied, nil
}

func (r *fakeMemoRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, tags []string) ([]model.VoiceMemo, error) {
	var out []model.VoiceMemo
	for _, memo := range r.memos {
		if memo.UserID != userID {
			continue
		}
		if !containsAll(memo.Tags, tags) {
			continue
		}
		out = append(out, *memo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMemoRepo) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript, status string, metadata map[string]interface{}) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	memo, ok := r.memos[id]
	if !ok || memo.TranscriptStatus != model.TranscriptPending {
		return false, nil
	}
	memo.Transcript = &transcript
	memo.TranscriptStatus = status
	memo.TranscriptMetadata = metadata
	return true, nil
}

func (r *fakeMemoRepo) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	memo, ok := r.memos[id]
	if !ok {
		return fmt.Errorf("memo %s not found", id)
	}
	memo.Tags = tags
	return nil
}

func (r *fakeMemoRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	memo, ok := r.memos[id]
	if !ok || memo.UserID != userID {
		return false, nil
	}
	delete(r.memos, id)
	return true, nil
}

func containsAll(haystack, needles []string) bool {
	for _, needle := range needles {
		found := false
		for _, h := range haystack {
			if h == needle {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fakeStore is an in-memory ObjectStore
type fakeStore struct {
	objects     map[string][]byte
	uploadErr   error
	downloadErr error
	removed     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Bucket() string { return "voice-memos" }

func (s *fakeStore) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[path] = content
	return nil
}

func (s *fakeStore) PublicURL(path string) string {
	return "https://test.local/storage/v1/object/public/voice-memos/" + path
}

func (s *fakeStore) Download(ctx context.Context, path string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	content, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return content, nil
}

func (s *fakeStore) Remove(ctx context.Context, path string) error {
	delete(s.objects, path)
	s.removed = append(s.removed, path)
	return nil
}

// fakeSTT returns a canned result or error and records what it was
// asked to transcribe.
type fakeSTT struct {
	result   *stt.Result
	err      error
	gotAudio []byte
	gotMIME  string
}

func (p *fakeSTT) Name() string { return "fake" }

func (p *fakeSTT) Transcribe(ctx context.Context, audio []byte, mimeType string) (*stt.Result, error) {
	p.gotAudio = audio
	p.gotMIME = mimeType
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// fakeTagger returns canned tags or an error
type fakeTagger struct {
	tags          []string
	err           error
	gotTranscript string
	calls         int
}

func (t *fakeTagger) GenerateTags(ctx context.Context, transcript string) ([]string, error) {
	t.calls++
	t.gotTranscript = transcript
	if t.err != nil {
		return nil, t.err
	}
	return t.tags, nil
}

// fakeAgent returns a canned signed URL
type fakeAgent struct {
	signedURL string
	err       error
}

func (a *fakeAgent) GetSignedURL(ctx context.Context) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.signedURL, nil
}

// fakeConversationRepo is an in-memory ConversationRepository
type fakeConversationRepo struct {
	conversations map[uuid.UUID]*model.Conversation
	updates       map[uuid.UUID]*repository.ConversationUpdate
	createErr     error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[uuid.UUID]*model.Conversation),
		updates:       make(map[uuid.UUID]*repository.ConversationUpdate),
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *conv
	r.conversations[conv.ID] = &copied
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, nil
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeConversationRepo) GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*model.Conversation, error) {
	for _, conv := range r.conversations {
		if conv.ElevenLabsConversationID != nil && *conv.ElevenLabsConversationID == elevenLabsID {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) UpdateFromWebhook(ctx context.Context, id uuid.UUID, update *repository.ConversationUpdate) error {
	if _, ok := r.conversations[id]; !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	r.updates[id] = update
	return nil
}

// pathFromTestURL strips the fakeStore public prefix
func pathFromTestURL(url string) string {
	return strings.TrimPrefix(url, "https://test.local/storage/v1/object/public/voice-memos/")
}
