package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Supabase (identity + object storage)
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	StorageBucket      string

	// ElevenLabs (speech-to-text + conversational agent)
	ElevenLabsAPIKey  string
	ElevenLabsAgentID string

	// OpenAI (tag generation)
	OpenAIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:      getEnv("SUPABASE_STORAGE_BUCKET", "voice-memos"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsAgentID:  os.Getenv("ELEVENLABS_AGENT_ID"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
	}

	// Validate required environment variables
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if cfg.SupabaseJWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if cfg.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required")
	}

	// OpenAI key is optional (only needed for tag generation)
	// ELEVENLABS_AGENT_ID is optional (only needed for conversations)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
