package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"campus-connect-ai/internal/contextutil"
)

// Searcher is the retriever's view of the vector index: embed the query text
// and return scored passages, best first.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// fingerprintPrefixLen bounds the passage prefix hashed for deduplication.
// Chunks sharing a 100-character opening collapse to one entry; that false
// positive on shared boilerplate headers is a known tradeoff.
const fingerprintPrefixLen = 100

// Retriever executes similarity searches with query-shape-specific expansion
// and prefix-fingerprint deduplication.
type Retriever struct {
	index Searcher
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(index Searcher) *Retriever {
	return &Retriever{index: index}
}

// contactVariations are the templated expansions issued for name searches.
var contactVariations = []string{
	"contact %s",
	"%s contact info",
	"phone %s",
	"email %s",
	"faculty %s",
	"staff %s",
}

// Retrieve returns up to 2k deduplicated passages for the query, in insertion
// order. Individual sub-searches that fail contribute nothing; Retrieve itself
// never fails, returning whatever was accumulated (possibly empty).
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []Passage {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		k = 4
	}
	maxResults := 2 * k

	acc := newCandidateAccumulator(maxResults)
	acc.addAll(r.search(ctx, query, k))

	kind := Classify(query)
	logger.DebugContext(ctx, "query classified", "query", query, "kind", kind.String())

	if kind == KindCourseSearch && acc.len() < k {
		for _, term := range tailTerms(query) {
			if acc.len() >= maxResults {
				break
			}
			acc.addAll(r.search(ctx, term, k))
		}
	}

	if acc.len() == 0 {
		words := strings.Fields(query)
		if len(words) > 0 {
			fallback := "course unit information " + words[len(words)-1]
			acc.addAll(r.search(ctx, fallback, k))
		}
	}

	if kind == KindNameSearch {
		acc.addAll(r.search(ctx, titleCase(query), k))
		name := ExtractName(query)
		if name == "" {
			name = titleCase(query)
		}
		for _, tmpl := range contactVariations {
			if acc.len() >= maxResults {
				break
			}
			acc.addAll(r.search(ctx, fmt.Sprintf(tmpl, name), k))
		}
	}

	passages := acc.passages()
	logger.InfoContext(ctx, "retrieval completed", "query", query, "kind", kind.String(), "count", len(passages))
	return passages
}

// search runs one sub-search, swallowing failures as empty results.
func (r *Retriever) search(ctx context.Context, query string, k int) []Passage {
	results, err := r.index.Search(ctx, query, k)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "sub-search failed", "query", query, "error", err)
		return nil
	}
	return results
}

// titleCase capitalizes the first letter of each word, lowercasing the rest.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// tailTerms derives up to three secondary search terms from the tail words of
// a course/unit query; the entity name typically trails qualifying words.
func tailTerms(query string) []string {
	words := strings.Fields(query)
	var terms []string
	for n := 1; n <= 3 && n < len(words); n++ {
		term := strings.Join(words[len(words)-n:], " ")
		if term != query {
			terms = append(terms, term)
		}
	}
	return terms
}

// candidateAccumulator keeps insertion-ordered passages deduplicated by a
// fingerprint of each passage's text prefix, up to a fixed cap.
type candidateAccumulator struct {
	max  int
	seen map[uint64]struct{}
	out  []Passage
}

func newCandidateAccumulator(max int) *candidateAccumulator {
	return &candidateAccumulator{
		max:  max,
		seen: make(map[uint64]struct{}),
		out:  make([]Passage, 0, max),
	}
}

func (a *candidateAccumulator) addAll(passages []Passage) {
	for _, p := range passages {
		if len(a.out) >= a.max {
			return
		}
		fp := fingerprint(p.Text)
		if _, dup := a.seen[fp]; dup {
			continue
		}
		a.seen[fp] = struct{}{}
		a.out = append(a.out, p)
	}
}

func (a *candidateAccumulator) len() int { return len(a.out) }

func (a *candidateAccumulator) passages() []Passage { return a.out }

// fingerprint hashes the first fingerprintPrefixLen bytes of the text.
func fingerprint(text string) uint64 {
	prefix := text
	if len(prefix) > fingerprintPrefixLen {
		prefix = prefix[:fingerprintPrefixLen]
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(prefix))
	return h.Sum64()
}
