package pipeline

import (
	"context"
	"time"

	"campus-connect-ai/internal/contextutil"
)

// Engine answers questions through the retrieval-and-answer pipeline.
type Engine interface {
	// Answer produces a complete answer for the request.
	Answer(ctx context.Context, req Request) (Answer, error)
	// AnswerStream produces the answer incrementally, invoking emit per text
	// fragment. Degraded answers are streamed the same way.
	AnswerStream(ctx context.Context, req Request, emit func(fragment string) error) error
}

// Options tunes the pipeline stages.
type Options struct {
	// Assistant is the assistant's self-identification name.
	Assistant string
	// Institution is the institution name used in prompts and canonical
	// query rewrites.
	Institution string
	// TopK is the number of passages included in the prompt.
	TopK int
	// FetchK is the over-fetch width handed to the retriever before
	// reranking.
	FetchK int
	// WebResults bounds the number of web results fetched per query.
	WebResults int
	// Threshold is the relevance gate score floor for generic queries.
	Threshold float32
	// NameThreshold is the lenient gate floor applied to name searches.
	NameThreshold float32
	// StreamPace is the minimum delay between emitted fragments on the
	// streaming path. Zero disables pacing.
	StreamPace time.Duration
}

func (o *Options) applyDefaults() {
	if o.Assistant == "" {
		o.Assistant = "Campus Connect AI"
	}
	if o.Institution == "" {
		o.Institution = "the university"
	}
	if o.TopK <= 0 {
		o.TopK = 4
	}
	if o.FetchK <= 0 {
		o.FetchK = 20
	}
	if o.WebResults <= 0 {
		o.WebResults = 3
	}
	if o.Threshold == 0 {
		o.Threshold = 0.5
	}
	if o.NameThreshold == 0 {
		o.NameThreshold = 0.3
	}
}

type engine struct {
	contextualizer *Contextualizer
	retriever      *Retriever
	reranker       *Reranker
	gate           *Gate
	augmenter      *Augmenter
	generator      Generator // nil means retrieval-only mode
	opts           Options
}

// NewEngine wires the pipeline stages. A nil generator puts the engine in
// retrieval-only mode; a nil web searcher inside the augmenter disables web
// augmentation. Both are degraded operating modes, not errors.
func NewEngine(index Searcher, scorer Scorer, web WebSearcher, generator Generator, opts Options) Engine {
	opts.applyDefaults()
	return &engine{
		contextualizer: NewContextualizer(opts.Institution),
		retriever:      NewRetriever(index),
		reranker:       NewReranker(scorer, index),
		gate:           NewGate(index, opts.Threshold, opts.NameThreshold),
		augmenter:      NewAugmenter(web),
		generator:      generator,
		opts:           opts,
	}
}

// routed holds the per-request state shared by both answer paths.
type routed struct {
	useRetrieval bool
	prompt       string
	context      string // formatted passage context, empty on the general route
}

// route runs the fixed stage sequence up to prompt construction:
// contextualize, gate, web augment, retrieve, rerank, assemble.
func (e *engine) route(ctx context.Context, req Request) routed {
	logger := contextutil.LoggerFromContext(ctx)

	query := e.contextualizer.Contextualize(req.Question, req.History)
	if query != req.Question {
		logger.InfoContext(ctx, "query contextualized", "original", req.Question, "rewritten", query)
	}

	historyText := FormatHistory(req.History)

	useRetrieval := e.gate.ShouldUseRetrieval(ctx, query)

	webContext := ""
	if !useRetrieval || ShouldSearchWeb(req.Question) {
		webContext = e.augmenter.SearchWeb(ctx, query, e.opts.WebResults)
	}

	in := promptInputs{
		assistant:   e.opts.Assistant,
		institution: e.opts.Institution,
		question:    req.Question,
		webContext:  webContext,
		history:     historyText,
	}

	if !useRetrieval {
		logger.InfoContext(ctx, "routing to general answering", "query", query)
		return routed{useRetrieval: false, prompt: generalPrompt(in)}
	}

	candidates := e.retriever.Retrieve(ctx, query, e.opts.FetchK)
	passages := e.reranker.Rerank(ctx, query, candidates, e.opts.TopK)
	in.context = FormatPassages(passages)

	logger.InfoContext(ctx, "routing to document-grounded answering",
		"query", query, "candidates", len(candidates), "passages", len(passages))
	return routed{useRetrieval: true, prompt: retrievalPrompt(in), context: in.context}
}

// Answer runs the pipeline and returns a single complete answer.
func (e *engine) Answer(ctx context.Context, req Request) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)
	r := e.route(ctx, req)

	if e.generator == nil {
		return Answer{Text: e.degradedText(r), Degraded: true}, nil
	}

	text, err := e.generator.Generate(ctx, r.prompt)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "provider", e.generator.Name(), "error", err)
		return Answer{Text: e.failureText(r, err), Degraded: true}, nil
	}
	return Answer{Text: text}, nil
}

// AnswerStream runs the pipeline and streams the answer. Degraded answers are
// emitted through the same paced stream.
func (e *engine) AnswerStream(ctx context.Context, req Request, emit func(fragment string) error) error {
	logger := contextutil.LoggerFromContext(ctx)
	r := e.route(ctx, req)

	paced := e.pacedEmitter(ctx, emit)

	if e.generator == nil {
		return streamText(e.degradedText(r), paced)
	}

	err := e.generator.GenerateStream(ctx, r.prompt, paced)
	if err != nil {
		logger.ErrorContext(ctx, "streaming generation failed", "provider", e.generator.Name(), "error", err)
		return streamText(e.failureText(r, err), paced)
	}
	return nil
}

// degradedText is the answer when no generation capability is configured.
func (e *engine) degradedText(r routed) string {
	if r.useRetrieval && r.context != "" {
		return rawContextPrefix + r.context + rawContextNote
	}
	return nothingFoundMsg
}

// failureText maps a provider failure to a user-visible degraded answer,
// distinguishing quota exhaustion from generic trouble.
func (e *engine) failureText(r routed, err error) string {
	if !r.useRetrieval || r.context == "" {
		return internalErrorMsg
	}
	if isQuotaFailure(err) {
		return quotaPrefix + r.context
	}
	return troublePrefix + r.context
}

// pacedEmitter applies the configured emission pace between fragments. The
// pace is a policy knob, independent of the fragment granularity the provider
// happens to produce.
func (e *engine) pacedEmitter(ctx context.Context, emit func(string) error) func(string) error {
	if e.opts.StreamPace <= 0 {
		return emit
	}

	first := true
	return func(fragment string) error {
		if !first {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.opts.StreamPace):
			}
		}
		first = false
		return emit(fragment)
	}
}

// streamFragmentSize bounds degraded-text fragments so fallback answers still
// arrive incrementally on the streaming path.
const streamFragmentSize = 48

// streamText emits a fixed text through the paced emitter in fragments.
func streamText(text string, emit func(string) error) error {
	runes := []rune(text)
	for start := 0; start < len(runes); start += streamFragmentSize {
		end := start + streamFragmentSize
		if end > len(runes) {
			end = len(runes)
		}
		if err := emit(string(runes[start:end])); err != nil {
			return err
		}
	}
	return nil
}
