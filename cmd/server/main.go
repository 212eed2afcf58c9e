package main

import (
	"log"
	"os"

	"sonanta/internal/ai"
	"sonanta/internal/api"
	"sonanta/internal/config"
	"sonanta/internal/convai"
	"sonanta/internal/db"
	"sonanta/internal/repository"
	"sonanta/internal/service"
	"sonanta/internal/storage"
	"sonanta/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()
	log.Println("Database connection established")

	// External collaborators
	store := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)
	sttProvider := stt.NewElevenLabsProvider(cfg.ElevenLabsAPIKey, "")
	tagger := ai.NewTagger(cfg.OpenAIKey)
	agent := convai.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsAgentID, "")

	// Repositories and services
	memoRepo := repository.NewPostgresMemoRepository(conn)
	convRepo := repository.NewPostgresConversationRepository(conn)
	memoService := service.NewVoiceMemoService(memoRepo, store, sttProvider, tagger)
	conversationService := service.NewConversationService(convRepo, agent)

	r := gin.Default()

	// Add CORS middleware for mobile app
	r.Use(corsMiddleware())

	// Register routes
	handler := api.NewHandler(memoService, conversationService)
	handler.RegisterRoutes(r, cfg.SupabaseJWTSecret)

	log.Printf("Sonanta backend running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for mobile app
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
