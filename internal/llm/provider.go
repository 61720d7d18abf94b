package llm

import (
	"context"
	"log/slog"
)

// Provider is a named text generation capability. All provider clients in
// this package implement it.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string, emit func(fragment string) error) error
}

// Default endpoints and models for the supported providers.
const (
	groqBaseURL   = "https://api.groq.com/openai"
	groqModel     = "llama-3.3-70b-versatile"
	cerebrasURL   = "https://api.cerebras.ai"
	cerebrasModel = "llama-3.3-70b"
	geminiModel   = "gemini-2.0-flash"
)

// ProviderConfig carries the configured credentials and the operator's
// declared default provider.
type ProviderConfig struct {
	GroqAPIKey     string
	CerebrasAPIKey string
	GoogleAPIKey   string
	// Default is the operator's preferred provider: "groq", "cerebras" or
	// "gemini".
	Default string
}

// Select evaluates the static provider priority chain once at startup:
// Groq when keyed and either preferred or unrivaled, then Cerebras when it is
// the declared default, then Gemini likewise. Returns nil when no provider is
// configured — the pipeline then operates in retrieval-only mode.
func Select(cfg ProviderConfig) Provider {
	if cfg.GroqAPIKey != "" && (cfg.Default == "groq" || cfg.CerebrasAPIKey == "") {
		slog.Info("Using Groq generation provider", "model", groqModel)
		return NewClient("groq", groqBaseURL, cfg.GroqAPIKey, groqModel)
	}

	if cfg.Default == "cerebras" && cfg.CerebrasAPIKey != "" {
		slog.Info("Using Cerebras generation provider", "model", cerebrasModel)
		return NewClient("cerebras", cerebrasURL, cfg.CerebrasAPIKey, cerebrasModel)
	}

	if cfg.Default == "gemini" && cfg.GoogleAPIKey != "" {
		slog.Info("Using Gemini generation provider", "model", geminiModel)
		return NewGeminiClient(cfg.GoogleAPIKey, geminiModel)
	}

	slog.Warn("No generation provider configured, operating in retrieval-only mode")
	return nil
}
