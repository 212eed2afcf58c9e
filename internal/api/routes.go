package api

import (
	"sonanta/internal/auth"
	"sonanta/internal/service"
	"sonanta/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler carries the services the HTTP layer fronts
type Handler struct {
	memos         *service.VoiceMemoService
	conversations *service.ConversationService
}

// NewHandler creates a new API handler
func NewHandler(memos *service.VoiceMemoService, conversations *service.ConversationService) *Handler {
	return &Handler{memos: memos, conversations: conversations}
}

// RegisterRoutes registers all routes on the engine
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	// Health check
	r.GET("/health", healthCheck)

	// Webhooks are authenticated by the provider, not by user tokens
	r.POST("/api/v1/webhooks/conversation-end", h.conversationEndWebhook)

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(jwtSecret))
	{
		v1.POST("/voice-memos", h.uploadVoiceMemo)
		v1.GET("/voice-memos", h.listVoiceMemos)
		v1.GET("/voice-memos/:id", h.getVoiceMemo)
		v1.DELETE("/voice-memos/:id", h.deleteVoiceMemo)

		v1.POST("/conversations/start", h.startConversation)
		v1.GET("/conversations", h.listConversations)
		v1.GET("/conversations/:id", h.getConversation)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "sonanta-backend",
	})
}
