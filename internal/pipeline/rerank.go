package pipeline

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"campus-connect-ai/internal/contextutil"
)

// Scorer is a secondary relevance model scoring passages against a query.
// Scores are parallel to the input texts; higher is more relevant.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float32, error)
}

// Reranker reorders an over-fetched candidate set by a secondary relevance
// model to produce the final top-k passages.
type Reranker struct {
	scorer Scorer   // nil disables reranking
	index  Searcher // fallback path when scoring fails
}

// NewReranker creates a reranker. A nil scorer short-circuits Rerank to
// returning candidates in their existing similarity order.
func NewReranker(scorer Scorer, index Searcher) *Reranker {
	return &Reranker{scorer: scorer, index: index}
}

// Rerank returns the top k candidates by secondary relevance score, keeping
// each candidate's original metadata. On scoring failure it falls back to a
// plain similarity search for the query, trading consistency for availability.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []Passage, k int) []Passage {
	logger := contextutil.LoggerFromContext(ctx)

	if len(candidates) == 0 {
		return nil
	}
	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}

	if r.scorer == nil {
		return candidates[:k]
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		logger.WarnContext(ctx, "rerank failed, falling back to similarity search", "error", err)
		fallback, ferr := r.index.Search(ctx, query, k)
		if ferr != nil {
			logger.WarnContext(ctx, "rerank fallback search failed", "error", ferr)
			return candidates[:k]
		}
		return fallback
	}

	ranked := make([]Passage, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	return ranked[:k]
}

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(1.0)
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// LexicalScorer is the default secondary relevance model: a lightweight,
// length-normalized token-overlap score. It never fails.
type LexicalScorer struct{}

// Score computes one lexical relevance score per text.
func (LexicalScorer) Score(_ context.Context, query string, texts []string) ([]float32, error) {
	queryTokens := filterStopwords(tokenize(query))
	scores := make([]float32, len(texts))
	if len(queryTokens) == 0 {
		return scores, nil
	}

	for i, text := range texts {
		scores[i] = lexicalScore(queryTokens, text)
	}
	return scores, nil
}

// lexicalScore is normalized to a predictable range so scores are comparable
// across passages of different lengths.
func lexicalScore(queryTokens []string, text string) float32 {
	textTokens := tokenize(text)
	if len(textTokens) == 0 {
		return 0
	}

	freq := make(map[string]int, len(textTokens))
	for _, token := range textTokens {
		freq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += freq[token]
	}

	score := (float32(rawMatches) / (1 + float32(len(textTokens)))) * lexicalLengthScale
	if score > maxLexicalScore {
		return maxLexicalScore
	}
	if score < 0 {
		return 0
	}
	return score
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
