package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// failingScorer always errors, exercising the fallback path.
type failingScorer struct{}

func (failingScorer) Score(context.Context, string, []string) ([]float32, error) {
	return nil, errors.New("rerank model unavailable")
}

func TestRerankNilScorerShortCircuits(t *testing.T) {
	candidates := []Passage{
		passage("first by similarity", 0.9),
		passage("second by similarity", 0.8),
		passage("third by similarity", 0.7),
	}

	got := NewReranker(nil, &fakeIndex{}).Rerank(context.Background(), "anything", candidates, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].Text != "first by similarity" || got[1].Text != "second by similarity" {
		t.Errorf("expected similarity order preserved, got %v", got)
	}
}

func TestRerankReordersByScore(t *testing.T) {
	candidates := []Passage{
		passage("nothing relevant here at all", 0.9),
		passage("the admission requirements for the degree are listed below", 0.5),
	}

	got := NewReranker(LexicalScorer{}, &fakeIndex{}).Rerank(context.Background(), "admission requirements", candidates, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if !strings.Contains(got[0].Text, "admission requirements") {
		t.Errorf("expected the lexically relevant passage first, got %q", got[0].Text)
	}
	if got[0].Source != "doc.pdf" {
		t.Errorf("expected original metadata preserved, got %q", got[0].Source)
	}
}

func TestRerankFailureFallsBackToSimilaritySearch(t *testing.T) {
	index := &fakeIndex{results: map[string][]Passage{
		"admission requirements": {passage("fresh similarity hit", 0.6)},
	}}
	candidates := []Passage{passage("stale candidate", 0.4)}

	got := NewReranker(failingScorer{}, index).Rerank(context.Background(), "admission requirements", candidates, 1)
	if len(got) != 1 || got[0].Text != "fresh similarity hit" {
		t.Fatalf("expected fallback similarity result, got %v", got)
	}
}

func TestRerankFallbackSearchFailureKeepsCandidates(t *testing.T) {
	index := &fakeIndex{err: errors.New("index down")}
	candidates := []Passage{passage("only candidate", 0.4)}

	got := NewReranker(failingScorer{}, index).Rerank(context.Background(), "query", candidates, 1)
	if len(got) != 1 || got[0].Text != "only candidate" {
		t.Fatalf("expected existing candidates on double failure, got %v", got)
	}
}

func TestRerankEmptyCandidates(t *testing.T) {
	got := NewReranker(LexicalScorer{}, &fakeIndex{}).Rerank(context.Background(), "query", nil, 4)
	if got != nil {
		t.Fatalf("expected nil for empty candidates, got %v", got)
	}
}

func TestLexicalScorerStopwordsOnly(t *testing.T) {
	scores, err := LexicalScorer{}.Score(context.Background(), "the and of", []string{"the and of"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 0 {
		t.Errorf("expected score 0 for stopword-only query, got %f", scores[0])
	}
}

func TestLexicalScorerClamped(t *testing.T) {
	scores, err := LexicalScorer{}.Score(context.Background(), "fees", []string{"fees fees fees fees"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] > maxLexicalScore {
		t.Errorf("expected score clamped to %f, got %f", maxLexicalScore, scores[0])
	}
	if scores[0] <= 0 {
		t.Errorf("expected positive score, got %f", scores[0])
	}
}
