// Command ingest runs a one-shot ingestion of the docs root into the
// document registry and the vector store, then exits. Useful for CI and for
// re-indexing without restarting the API server.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"campus-connect-ai/internal/config"
	"campus-connect-ai/internal/ingest"
	"campus-connect-ai/internal/llm"
	"campus-connect-ai/internal/storage"
	"campus-connect-ai/internal/vectorstore"
)

func main() {
	root := flag.String("root", "", "docs root to ingest (defaults to DOCS_ROOT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *root != "" {
		cfg.DocsRoot = *root
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

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

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	registry := storage.NewDocumentRepo(db)

	pipeline := ingest.NewPipeline(cfg.DocsRoot, registry, embedder, vectorStore, cfg.QdrantCollection)
	if err := pipeline.IngestAll(ctx); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	slog.Info("Ingestion finished", "root", cfg.DocsRoot)
}
