package api

import (
	"log"
	"net/http"

	"sonanta/internal/auth"
	"sonanta/internal/service"
	"sonanta/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// startConversation handles POST /api/v1/conversations/start
func (h *Handler) startConversation(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	result, err := h.conversations.Start(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[Conversation] Error starting conversation: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to start conversation")
		return
	}

	utils.Success(c, gin.H{
		"signed_url":      result.SignedURL,
		"conversation_id": result.ConversationID,
		"user_id":         userID,
	})
}

// getConversation handles GET /api/v1/conversations/:id
func (h *Handler) getConversation(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	conv, err := h.conversations.Get(c.Request.Context(), conversationID, userID)
	if err != nil {
		log.Printf("[Conversation] Error getting conversation: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve conversation")
		return
	}
	if conv == nil {
		utils.Error(c, http.StatusNotFound, "conversation not found")
		return
	}

	utils.Success(c, gin.H{"conversation": conv})
}

// listConversations handles GET /api/v1/conversations
func (h *Handler) listConversations(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	limit, offset := parsePagination(c, 10)

	conversations, err := h.conversations.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("[Conversation] Error listing conversations: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	utils.Success(c, gin.H{
		"conversations": conversations,
		"limit":         limit,
		"offset":        offset,
		"count":         len(conversations),
	})
}

// conversationEndWebhook handles POST /api/v1/webhooks/conversation-end
func (h *Handler) conversationEndWebhook(c *gin.Context) {
	var payload service.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	if err := h.conversations.HandleWebhook(c.Request.Context(), &payload); err != nil {
		log.Printf("[Webhook] Error handling conversation-end webhook: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	utils.Success(c, gin.H{"status": "received"})
}
