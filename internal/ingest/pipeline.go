package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"campus-connect-ai/internal/contextutil"
	"campus-connect-ai/internal/storage"
	"campus-connect-ai/internal/vectorstore"
)

// Embedder turns chunk texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates ingestion of documents into the registry and the
// vector store.
type Pipeline struct {
	root       string
	registry   storage.DocumentStore
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	chunker    *Chunker
}

// NewPipeline creates a new ingestion pipeline rooted at the docs directory.
func NewPipeline(root string, registry storage.DocumentStore, embedder Embedder, store vectorstore.VectorStore, collection string) *Pipeline {
	return &Pipeline{
		root:       root,
		registry:   registry,
		embedder:   embedder,
		store:      store,
		collection: collection,
		chunker:    NewChunker(),
	}
}

// IngestFile ingests a single document. Unchanged files (by content hash)
// are skipped. Re-ingesting a changed file overwrites its chunk points,
// which have deterministic IDs, and deletes any stale tail points.
func (p *Pipeline) IngestFile(ctx context.Context, file ScannedFile) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", file.AbsPath, err)
	}

	hashHex := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := p.registry.GetBySource(ctx, file.RelPath)
	if err != nil && err != storage.ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}
	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "source", file.RelPath, "hash", hashHex)
		return nil
	}

	var title string
	var chunks []Chunk
	chunkType := "markdown"
	if strings.EqualFold(filepath.Ext(file.RelPath), ".txt") {
		chunkType = "text"
		title, chunks, err = p.chunker.ChunkText(content, file.RelPath)
	} else {
		title, chunks, err = p.chunker.ChunkMarkdown(content, file.RelPath)
	}
	if err != nil {
		return fmt.Errorf("failed to chunk %s: %w", file.RelPath, err)
	}
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "source", file.RelPath)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  pointID(file.RelPath, i),
			Vec: embeddings[i],
			Meta: map[string]any{
				"text":       chunk.Text,
				"source":     file.RelPath,
				"owner":      file.Owner,
				"chunk_type": chunkType,
				"section":    chunk.Section,
				"title":      title,
			},
		}
	}

	if err := p.store.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	// A shrinking document leaves stale tail points behind; remove them.
	if existing != nil && existing.ChunkCount > len(chunks) {
		var stale []string
		for i := len(chunks); i < existing.ChunkCount; i++ {
			stale = append(stale, pointID(file.RelPath, i))
		}
		if err := p.store.Delete(ctx, p.collection, stale); err != nil {
			logger.WarnContext(ctx, "failed to delete stale points", "source", file.RelPath, "count", len(stale), "error", err)
		}
	}

	doc := &storage.Document{
		Source:     file.RelPath,
		Owner:      file.Owner,
		Title:      title,
		Hash:       hashHex,
		ChunkCount: len(chunks),
	}
	if existing != nil {
		doc.ID = existing.ID
	}
	if err := p.registry.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	logger.InfoContext(ctx, "ingested document", "source", file.RelPath, "chunks", len(chunks), "title", title)
	return nil
}

// IngestAll scans the docs root and ingests every document. Errors for
// individual files are logged but don't stop the run.
func (p *Pipeline) IngestAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanRoot(ctx, p.root)
	if err != nil {
		return fmt.Errorf("failed to scan docs root: %w", err)
	}

	logger.InfoContext(ctx, "starting ingestion", "total_files", len(files))

	var successCount, errorCount int
	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.IngestFile(ctx, file); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to ingest file", "source", file.RelPath, "error", err)
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "ingestion completed", "total_files", len(files), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("ingestion completed with %d errors", errorCount)
	}
	return nil
}

// pointID derives a stable vector store point ID from the document source
// and chunk index, so re-ingesting a file overwrites its previous points.
func pointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("campus-connect/%s#%d", source, index))).String()
}
