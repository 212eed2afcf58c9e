package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"sonanta/internal/model"
	"sonanta/internal/repository"

	"github.com/google/uuid"
)

// AgentClient is the conversational-agent contract the service consumes
type AgentClient interface {
	GetSignedURL(ctx context.Context) (string, error)
}

// ConversationService issues agent session URLs and owns the
// conversation records around them.
type ConversationService struct {
	repo  repository.ConversationRepository
	agent AgentClient
}

// NewConversationService creates a new conversation service
func NewConversationService(repo repository.ConversationRepository, agent AgentClient) *ConversationService {
	return &ConversationService{repo: repo, agent: agent}
}

// StartResult is returned when a session is issued
type StartResult struct {
	SignedURL      string    `json:"signed_url"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

// Start fetches a signed session URL for the configured agent and
// creates the conversation record for the user.
func (s *ConversationService) Start(ctx context.Context, userID uuid.UUID) (*StartResult, error) {
	signedURL, err := s.agent.GetSignedURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get signed url: %w", err)
	}

	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:         uuid.New(),
		UserID:     userID,
		Transcript: []model.ConversationTurn{},
		Metadata:   map[string]interface{}{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation record: %w", err)
	}

	log.Printf("[Conversation] Started conversation %s for user %s", conv.ID, userID)

	return &StartResult{SignedURL: signedURL, ConversationID: conv.ID}, nil
}

// Get returns the conversation only if the user owns it
func (s *ConversationService) Get(ctx context.Context, conversationID, userID uuid.UUID) (*model.Conversation, error) {
	return s.repo.GetByID(ctx, conversationID, userID)
}

// List returns the user's conversations newest-first
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Conversation, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// WebhookPayload is the end-of-conversation notification from the
// agent provider.
type WebhookPayload struct {
	ConversationID  string                   `json:"conversation_id"`
	UserID          *string                  `json:"user_id,omitempty"`
	Transcript      []model.ConversationTurn `json:"transcript"`
	Summary         *string                  `json:"summary,omitempty"`
	Title           *string                  `json:"title,omitempty"`
	DurationSeconds *int                     `json:"call_duration_secs,omitempty"`
	AudioURL        *string                  `json:"audio_url,omitempty"`
	Metadata        map[string]interface{}   `json:"metadata,omitempty"`
}

// HandleWebhook reconciles a conversation record with the provider's
// end-of-conversation payload, matched by the provider conversation id.
// The id is only known provider-side until this notification arrives,
// so an unmatched payload that carries the user id creates the record
// instead; an unmatched payload without one is logged and acknowledged.
func (s *ConversationService) HandleWebhook(ctx context.Context, payload *WebhookPayload) error {
	if payload.ConversationID == "" {
		return fmt.Errorf("webhook payload missing conversation_id")
	}

	conv, err := s.repo.GetByElevenLabsID(ctx, payload.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to look up conversation: %w", err)
	}
	if conv == nil {
		if payload.UserID == nil {
			log.Printf("[Webhook] No conversation found for provider id %s and no user_id in payload", payload.ConversationID)
			return nil
		}
		userID, err := uuid.Parse(*payload.UserID)
		if err != nil {
			return fmt.Errorf("webhook payload has invalid user_id: %w", err)
		}

		now := time.Now().UTC()
		providerID := payload.ConversationID
		conv = &model.Conversation{
			ID:                       uuid.New(),
			UserID:                   userID,
			ElevenLabsConversationID: &providerID,
			Transcript:               []model.ConversationTurn{},
			Metadata:                 map[string]interface{}{},
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		if err := s.repo.Create(ctx, conv); err != nil {
			return fmt.Errorf("failed to create conversation from webhook: %w", err)
		}
		log.Printf("[Webhook] Created conversation %s for provider id %s", conv.ID, providerID)
	}

	update := &repository.ConversationUpdate{
		Transcript:      payload.Transcript,
		Summary:         payload.Summary,
		Title:           payload.Title,
		DurationSeconds: payload.DurationSeconds,
		AudioURL:        payload.AudioURL,
		Metadata:        payload.Metadata,
	}

	if err := s.repo.UpdateFromWebhook(ctx, conv.ID, update); err != nil {
		return fmt.Errorf("failed to apply webhook update: %w", err)
	}

	log.Printf("[Webhook] Updated conversation %s from provider id %s", conv.ID, payload.ConversationID)
	return nil
}
