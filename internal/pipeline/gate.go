package pipeline

import (
	"context"

	"campus-connect-ai/internal/contextutil"
)

// gateProbeWidth is the number of scored candidates examined by the gate.
const gateProbeWidth = 5

// Gate decides whether retrieved documents are usable for a query, or whether
// the pipeline should fall back to general/web-grounded answering.
//
// The gate is deliberately retrieval-biased: it returns false only when the
// index yields literally nothing or the search fails. Web fallback is driven
// primarily by the explicit web-trigger heuristic, not by this gate.
type Gate struct {
	index Searcher

	// Threshold is the minimum similarity score for generic queries.
	Threshold float32
	// NameThreshold is the lowered threshold applied to name searches, which
	// have inherently lower lexical similarity to stored documents.
	NameThreshold float32
}

// NewGate creates a relevance gate with the given thresholds.
func NewGate(index Searcher, threshold, nameThreshold float32) *Gate {
	return &Gate{index: index, Threshold: threshold, NameThreshold: nameThreshold}
}

// ShouldUseRetrieval reports whether document-grounded answering should be
// attempted for the query.
func (g *Gate) ShouldUseRetrieval(ctx context.Context, query string) bool {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := g.index.Search(ctx, query, gateProbeWidth)
	if err != nil {
		logger.WarnContext(ctx, "relevance probe failed", "query", query, "error", err)
		return false
	}
	if len(results) == 0 {
		return false
	}

	if Classify(query) == KindNameSearch {
		// Directory-style lookups get best-effort retrieval: any hit at all
		// is enough.
		logger.DebugContext(ctx, "name search detected, lenient gate", "query", query)
		return true
	}
	threshold := g.Threshold

	for _, r := range results {
		if r.Score >= threshold {
			logger.DebugContext(ctx, "gate passed on score", "query", query, "score", r.Score, "threshold", threshold)
			return true
		}
	}

	// Nothing met the threshold but the index returned candidates: prefer
	// retrieval anyway.
	logger.DebugContext(ctx, "gate passed below threshold", "query", query, "count", len(results))
	return true
}
