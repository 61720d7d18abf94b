// Package index adapts the embeddings client and the vector store into the
// text-in, passages-out search the pipeline consumes.
package index

import (
	"context"
	"fmt"

	"campus-connect-ai/internal/pipeline"
	"campus-connect-ai/internal/vectorstore"
)

// Embedder generates embedding vectors for texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticIndex embeds query text and searches the vector store, mapping
// point payloads onto passages.
type SemanticIndex struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewSemanticIndex creates a semantic index over the given collection.
func NewSemanticIndex(embedder Embedder, store vectorstore.VectorStore, collection string) *SemanticIndex {
	return &SemanticIndex{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// Search embeds the query and returns the k most similar passages.
func (s *SemanticIndex) Search(ctx context.Context, query string, k int) ([]pipeline.Passage, error) {
	embeddings, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := s.store.Search(ctx, s.collection, embeddings[0], k, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	passages := make([]pipeline.Passage, 0, len(results))
	for _, result := range results {
		text, _ := result.Meta["text"].(string)
		if text == "" {
			continue
		}
		source, _ := result.Meta["source"].(string)
		owner, _ := result.Meta["owner"].(string)
		chunkType, _ := result.Meta["chunk_type"].(string)

		passages = append(passages, pipeline.Passage{
			Text:      text,
			Source:    source,
			Owner:     owner,
			ChunkType: chunkType,
			Score:     result.Score,
		})
	}
	return passages, nil
}
