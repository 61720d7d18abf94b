package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"campus-connect-ai/internal/config"
	"campus-connect-ai/internal/http"
	"campus-connect-ai/internal/index"
	"campus-connect-ai/internal/ingest"
	"campus-connect-ai/internal/llm"
	"campus-connect-ai/internal/pipeline"
	"campus-connect-ai/internal/service"
	"campus-connect-ai/internal/storage"
	"campus-connect-ai/internal/vectorstore"
	"campus-connect-ai/internal/websearch"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	configureLogging(cfg)

	// Initialize document registry database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	registry := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Answer generation provider chain. A nil provider means every answer
	// degrades to retrieved context.
	generator := llm.Select(llm.ProviderConfig{
		GroqAPIKey:     cfg.GroqAPIKey,
		CerebrasAPIKey: cfg.CerebrasAPIKey,
		GoogleAPIKey:   cfg.GoogleAPIKey,
		Default:        cfg.DefaultLLM,
	})
	if generator == nil {
		slog.Warn("No generation provider configured, answers will degrade to retrieved context")
	}

	// Web search: Tavily when keyed, DuckDuckGo scrape as fallback
	var primary websearch.Searcher
	if cfg.TavilyAPIKey != "" {
		primary = websearch.NewTavily(cfg.TavilyAPIKey)
	}
	webSearcher := websearch.NewPair(primary, websearch.NewDuckDuckGo())

	semanticIndex := index.NewSemanticIndex(embedder, vectorStore, cfg.QdrantCollection)

	engine := pipeline.NewEngine(semanticIndex, &pipeline.LexicalScorer{}, webSearcher, asGenerator(generator), pipeline.Options{
		Assistant:     cfg.AssistantName,
		Institution:   cfg.InstitutionName,
		TopK:          cfg.TopK,
		FetchK:        cfg.FetchK,
		WebResults:    cfg.WebResults,
		Threshold:     float32(cfg.Threshold),
		NameThreshold: float32(cfg.NameThreshold),
		StreamPace:    cfg.StreamPace,
	})
	slog.Info("Answer pipeline initialized", "institution", cfg.InstitutionName)

	chatService := service.NewChatService(engine)

	router := http.NewRouter(&http.Deps{
		ChatService: chatService,
		Registry:    registry,
		VectorStore: vectorStore,
		Collection:  cfg.QdrantCollection,
	})

	// Ingest documents in the background once the router is serving
	go func() {
		ingestCtx := context.Background()
		if _, err := os.Stat(cfg.DocsRoot); err != nil {
			slog.Info("Docs root not present, skipping background ingestion", "root", cfg.DocsRoot)
			return
		}
		slog.Info("Starting background ingestion", "root", cfg.DocsRoot)
		ingestPipeline := ingest.NewPipeline(cfg.DocsRoot, registry, embedder, vectorStore, cfg.QdrantCollection)
		if err := ingestPipeline.IngestAll(ingestCtx); err != nil {
			slog.Error("Ingestion completed with errors", "error", err)
		} else {
			slog.Info("Ingestion completed successfully")
		}
	}()

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// asGenerator converts the provider to the pipeline's generator port,
// preserving nil so a missing provider stays a true nil interface.
func asGenerator(p llm.Provider) pipeline.Generator {
	if p == nil {
		return nil
	}
	return p
}

// configureLogging sets the default slog logger from config.
func configureLogging(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)
}
