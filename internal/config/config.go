package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Identity shown to students in prompts.
	InstitutionName string
	AssistantName   string

	// Answer generation providers, selected in priority order.
	GroqAPIKey     string
	CerebrasAPIKey string
	GoogleAPIKey   string
	DefaultLLM     string

	// Embeddings server (OpenAI-compatible).
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string

	// Web search.
	TavilyAPIKey string

	// Vector store.
	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	// Pipeline tuning.
	FetchK          int
	TopK            int
	WebResults      int
	Threshold       float64
	NameThreshold   float64
	StreamPace      time.Duration

	// Document registry and source documents.
	DBPath   string
	DocsRoot string

	APIPort   string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		InstitutionName:    getEnv("INSTITUTION_NAME", "KCA University"),
		AssistantName:      getEnv("ASSISTANT_NAME", "Campus Connect"),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		CerebrasAPIKey:     getEnv("CEREBRAS_API_KEY", ""),
		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", ""),
		DefaultLLM:         getEnv("DEFAULT_LLM", "groq"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		TavilyAPIKey:       getEnv("TAVILY_API_KEY", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "campus_docs"),
		DBPath:             getEnv("DB_PATH", "./data/campus-connect.db"),
		DocsRoot:           getEnv("DOCS_ROOT", "./docs"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// The vector size must match the output dimension of the embeddings model.
	// If it changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.FetchK, err = getIntEnv("FETCH_K", 20); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getIntEnv("TOP_K", 4); err != nil {
		return nil, err
	}
	if cfg.WebResults, err = getIntEnv("WEB_RESULTS", 3); err != nil {
		return nil, err
	}
	if cfg.Threshold, err = getFloatEnv("RELEVANCE_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.NameThreshold, err = getFloatEnv("NAME_RELEVANCE_THRESHOLD", 0.3); err != nil {
		return nil, err
	}

	paceStr := getEnv("STREAM_PACE", "")
	if paceStr != "" {
		pace, err := time.ParseDuration(paceStr)
		if err != nil {
			return nil, fmt.Errorf("STREAM_PACE must be a valid duration: %w", err)
		}
		if pace < 0 {
			return nil, fmt.Errorf("STREAM_PACE must not be negative")
		}
		cfg.StreamPace = pace
	}

	// Create ./data directory if it doesn't exist (for the registry DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}
