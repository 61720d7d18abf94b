package index

import (
	"context"
	"errors"
	"testing"

	"campus-connect-ai/internal/vectorstore"
)

type fakeEmbedder struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

type fakeStore struct {
	vectorstore.VectorStore
	results []vectorstore.SearchResult
	err     error
}

func (f *fakeStore) Search(_ context.Context, _ string, _ []float32, _ int, _ map[string]any) ([]vectorstore.SearchResult, error) {
	return f.results, f.err
}

func TestSemanticIndexSearch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{0.1, 0.2}}}
	store := &fakeStore{results: []vectorstore.SearchResult{
		{
			PointID: "p1",
			Score:   0.87,
			Meta: map[string]any{
				"text":       "The September intake opens in June.",
				"source":     "intake.pdf",
				"owner":      "admin",
				"chunk_type": "text",
			},
		},
		{
			PointID: "p2",
			Score:   0.4,
			Meta:    map[string]any{"source": "empty.pdf"}, // no text, dropped
		},
	}}

	idx := NewSemanticIndex(embedder, store, "documents")
	passages, err := idx.Search(context.Background(), "september intake", 4)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	p := passages[0]
	if p.Text != "The September intake opens in June." || p.Source != "intake.pdf" || p.Score != 0.87 {
		t.Errorf("unexpected passage %+v", p)
	}
}

func TestSemanticIndexEmbedFailure(t *testing.T) {
	idx := NewSemanticIndex(&fakeEmbedder{err: errors.New("embedder down")}, &fakeStore{}, "documents")

	if _, err := idx.Search(context.Background(), "query", 4); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestSemanticIndexStoreFailure(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float32{{0.1}}}
	idx := NewSemanticIndex(embedder, &fakeStore{err: errors.New("qdrant down")}, "documents")

	if _, err := idx.Search(context.Background(), "query", 4); err == nil {
		t.Fatal("expected error when vector search fails")
	}
}
