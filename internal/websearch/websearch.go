// Package websearch provides the web search capability behind the pipeline's
// web augmenter: a Tavily API client with a DuckDuckGo HTML fallback that
// needs no API key.
package websearch

import (
	"context"

	"campus-connect-ai/internal/contextutil"
	"campus-connect-ai/internal/pipeline"
)

// Searcher is a single web search provider.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]pipeline.WebResult, error)
}

// Pair tries the primary provider first and falls back to the secondary when
// the primary fails or is absent.
type Pair struct {
	primary  Searcher // may be nil when no API key is configured
	fallback Searcher
}

// NewPair creates a primary/fallback provider pair.
func NewPair(primary, fallback Searcher) *Pair {
	return &Pair{primary: primary, fallback: fallback}
}

// Search runs the query against the primary provider, falling back on error.
func (p *Pair) Search(ctx context.Context, query string, n int) ([]pipeline.WebResult, error) {
	if p.primary != nil {
		results, err := p.primary.Search(ctx, query, n)
		if err == nil {
			return results, nil
		}
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "primary web search failed, falling back", "error", err)
	}
	if p.fallback == nil {
		return nil, nil
	}
	return p.fallback.Search(ctx, query, n)
}
