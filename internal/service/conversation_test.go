package service

import (
	"context"
	"errors"
	"testing"

	"sonanta/internal/model"

	"github.com/google/uuid"
)

func TestStartIssuesURLAndCreatesRecord(t *testing.T) {
	repo := newFakeConversationRepo()
	agent := &fakeAgent{signedURL: "wss://agent/session?token=abc"}
	svc := NewConversationService(repo, agent)

	userID := uuid.New()
	result, err := svc.Start(context.Background(), userID)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if result.SignedURL != "wss://agent/session?token=abc" {
		t.Errorf("unexpected signed url: %s", result.SignedURL)
	}

	conv, ok := repo.conversations[result.ConversationID]
	if !ok {
		t.Fatal("conversation record not created")
	}
	if conv.UserID != userID {
		t.Errorf("conversation owner = %s, want %s", conv.UserID, userID)
	}
}

func TestStartAgentFailureCreatesNothing(t *testing.T) {
	repo := newFakeConversationRepo()
	agent := &fakeAgent{err: errors.New("agent unavailable")}
	svc := NewConversationService(repo, agent)

	if _, err := svc.Start(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error when signed url request fails")
	}
	if len(repo.conversations) != 0 {
		t.Error("record created despite agent failure")
	}
}

func TestGetEnforcesConversationOwnership(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo, &fakeAgent{signedURL: "wss://x"})

	owner := uuid.New()
	result, err := svc.Start(context.Background(), owner)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if conv, _ := svc.Get(context.Background(), result.ConversationID, uuid.New()); conv != nil {
		t.Error("foreign user could read another user's conversation")
	}
	if conv, _ := svc.Get(context.Background(), result.ConversationID, owner); conv == nil {
		t.Error("owner could not read own conversation")
	}
}

func TestHandleWebhookUpdatesMatchedConversation(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo, &fakeAgent{})

	providerID := "conv-el-42"
	convID := uuid.New()
	repo.conversations[convID] = &model.Conversation{
		ID:                       convID,
		UserID:                   uuid.New(),
		ElevenLabsConversationID: &providerID,
	}

	summary := "talked about the week"
	duration := 180
	payload := &WebhookPayload{
		ConversationID: providerID,
		Transcript: []model.ConversationTurn{
			{Role: "user", Message: "hello"},
			{Role: "agent", Message: "hi there"},
		},
		Summary:         &summary,
		DurationSeconds: &duration,
	}

	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	update, ok := repo.updates[convID]
	if !ok {
		t.Fatal("no update applied to the matched conversation")
	}
	if len(update.Transcript) != 2 {
		t.Errorf("transcript turns = %d, want 2", len(update.Transcript))
	}
	if update.Summary == nil || *update.Summary != summary {
		t.Errorf("summary not applied: %v", update.Summary)
	}
	if update.DurationSeconds == nil || *update.DurationSeconds != 180 {
		t.Errorf("duration not applied: %v", update.DurationSeconds)
	}
}

func TestHandleWebhookCreatesRecordForUnknownID(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo, &fakeAgent{})

	userID := uuid.New().String()
	payload := &WebhookPayload{
		ConversationID: "conv-el-new",
		UserID:         &userID,
	}

	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	conv, err := repo.GetByElevenLabsID(context.Background(), "conv-el-new")
	if err != nil || conv == nil {
		t.Fatal("conversation was not created for the unknown provider id")
	}
	if conv.UserID.String() != userID {
		t.Errorf("created conversation owner = %s, want %s", conv.UserID, userID)
	}
	if _, ok := repo.updates[conv.ID]; !ok {
		t.Error("webhook update not applied to the created conversation")
	}
}

func TestHandleWebhookUnknownIDWithoutUserIsAcknowledged(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo, &fakeAgent{})

	payload := &WebhookPayload{ConversationID: "conv-el-missing"}
	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("unmatched webhook should be acknowledged, got: %v", err)
	}
	if len(repo.conversations) != 0 {
		t.Error("no record should be created without a user id")
	}
}

func TestHandleWebhookRejectsEmptyConversationID(t *testing.T) {
	svc := NewConversationService(newFakeConversationRepo(), &fakeAgent{})
	if err := svc.HandleWebhook(context.Background(), &WebhookPayload{}); err == nil {
		t.Fatal("expected error for payload without conversation_id")
	}
}
