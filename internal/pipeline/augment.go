package pipeline

import (
	"context"
	"fmt"
	"strings"

	"campus-connect-ai/internal/contextutil"
)

// WebSearcher is the pipeline's view of the web search capability.
type WebSearcher interface {
	Search(ctx context.Context, query string, n int) ([]WebResult, error)
}

// snippetLimit bounds the snippet length included per web result.
const snippetLimit = 150

// recencyKeywords suggest the query needs current or real-time information.
var recencyKeywords = []string{
	"news", "latest", "recent", "current", "today", "tomorrow",
	"2024", "2025", "2026", "deadline", "announcement",
	"update", "status", "now", "this week", "this month",
}

// Augmenter decides when external/current-events signals are needed and
// fetches a small set of web results as auxiliary context.
type Augmenter struct {
	searcher WebSearcher
}

// NewAugmenter creates a web augmenter. A nil searcher disables augmentation.
func NewAugmenter(searcher WebSearcher) *Augmenter {
	return &Augmenter{searcher: searcher}
}

// ShouldSearchWeb reports whether the query warrants a web search: either a
// recency keyword is present, or the query is an open-ended question (a
// question mark plus more than four words).
func ShouldSearchWeb(query string) bool {
	lower := strings.ToLower(query)
	for _, keyword := range recencyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return strings.Contains(query, "?") && len(strings.Fields(query)) > 4
}

// SearchWeb fetches up to n web results and formats them as numbered
// title/URL/snippet blocks. Any failure yields an empty string.
func (a *Augmenter) SearchWeb(ctx context.Context, query string, n int) string {
	logger := contextutil.LoggerFromContext(ctx)

	if a.searcher == nil {
		return ""
	}

	results, err := a.searcher.Search(ctx, query, n)
	if err != nil {
		logger.WarnContext(ctx, "web search failed", "query", query, "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Snippet != "" {
			snippet := r.Snippet
			if len(snippet) > snippetLimit {
				snippet = snippet[:snippetLimit]
			}
			fmt.Fprintf(&b, "   Summary: %s...\n", snippet)
		}
		b.WriteString("\n")
	}

	logger.InfoContext(ctx, "web search returned results", "query", query, "count", len(results))
	return strings.TrimRight(b.String(), "\n")
}
