package pipeline

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation. The history slice is owned by
// the caller and is never mutated by the pipeline.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Passage is a retrieved document chunk with its similarity (or rerank) score.
type Passage struct {
	// Text is the chunk content.
	Text string
	// Source identifies the origin document.
	Source string
	// Owner is the identifier of the user who uploaded the document, if any.
	Owner string
	// ChunkType distinguishes chunk kinds (e.g. "text", "table").
	ChunkType string
	// Score is the similarity score from the vector search, or the rerank
	// score after reranking. Higher is more relevant.
	Score float32
}

// WebResult is a single web search hit.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Request is a question posed to the pipeline.
type Request struct {
	// Question is the user's raw query text.
	Question string
	// History is the prior conversation, oldest first. May be nil.
	History []Turn
}

// Answer is the final pipeline output for the non-streaming path.
type Answer struct {
	// Text is the answer content.
	Text string
	// Degraded is true when the text is a fallback (raw context or a fixed
	// message) rather than generated output.
	Degraded bool
}
