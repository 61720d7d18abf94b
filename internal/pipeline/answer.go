package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Generator is the pipeline's view of a text generation provider.
type Generator interface {
	// Name identifies the provider (for logging).
	Name() string
	// Generate produces a complete answer for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream produces the answer incrementally, invoking emit for
	// each text fragment as it arrives.
	GenerateStream(ctx context.Context, prompt string, emit func(fragment string) error) error
}

// Degradation messages. These are user-visible answers, not errors: the
// pipeline always returns best-effort text for expected failure modes.
const (
	quotaPrefix      = "The AI is currently at its limit (Quota Exceeded). Here is the relevant information retrieved from our documents:\n\n"
	troublePrefix    = "I had trouble summarizing the information, but here is what I found in our records:\n\n"
	rawContextPrefix = "Based on the available information from your documents:\n\n"
	rawContextNote   = "\n\n(Note: AI generation is currently disabled for summarizing.)"
	nothingFoundMsg  = "I couldn't find any relevant information."
	internalErrorMsg = "I encountered an error while processing your question. Please try again later."
)

// quotaSignatures identify resource-exhaustion failures from provider errors.
// Detection is by failure signature because providers surface quota conditions
// in provider-specific shapes (gRPC status text, HTTP 429, message fields).
var quotaSignatures = []string{"RESOURCE_EXHAUSTED", "429", "rate limit", "rate_limit", "quota"}

// isQuotaFailure reports whether the error looks like a quota/rate-limit
// condition rather than a generic provider failure.
func isQuotaFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range quotaSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// promptInputs collects everything the prompt templates draw from.
type promptInputs struct {
	assistant   string
	institution string
	question    string
	context     string
	webContext  string
	history     string
}

// retrievalPrompt builds the document-grounded prompt: identity framing,
// document and web context, history, and answer instructions.
func retrievalPrompt(in promptInputs) string {
	web := in.webContext
	if web == "" {
		web = "No web search results available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the official AI assistant of %s. Use the following context from documents, web search results, and conversation history to answer the student's question.\n\n", in.assistant, in.institution)
	fmt.Fprintf(&b, "Context from documents:\n%s\n\n", in.context)
	fmt.Fprintf(&b, "Web Search Results:\n%s\n\n", web)
	fmt.Fprintf(&b, "Conversation History:\n%s\n\n", in.history)
	fmt.Fprintf(&b, "Current Question: %s\n\n", in.question)
	fmt.Fprintf(&b, `Instructions:
1. If asked about your name, identify yourself as "%s"
2. Use the context above to provide accurate information about %s
3. If the question refers to previous topics (using words like "it", "they", "this", "that"), use the conversation history to understand what is being referred to
4. If you cannot find the answer in the context, say so honestly and suggest the student contact the university administration
5. For current events or real-time information, use the web search results provided
6. Use short paragraphs and bullet points for structured information such as fees, requirements and schedules
7. Always maintain context from the conversation history when answering follow-up questions`, in.assistant, in.institution)
	return b.String()
}

// generalPrompt builds the prompt for the web/history-grounded route used
// when no usable documents exist.
func generalPrompt(in promptInputs) string {
	web := in.webContext
	if web == "" {
		web = "No web search results available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the official AI assistant of %s.\n\n", in.assistant, in.institution)
	fmt.Fprintf(&b, "Conversation History:\n%s\n\n", in.history)
	fmt.Fprintf(&b, "Web Search Results:\n%s\n\n", web)
	fmt.Fprintf(&b, "Current Question: %s\n\n", in.question)
	fmt.Fprintf(&b, "Answer based on the conversation context and web search results above.")
	if in.history != "" {
		b.WriteString(" The conversation is already in progress, so do not greet the student again.")
	}
	return b.String()
}
