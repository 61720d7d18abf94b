package ingest

// Chunk is one piece of a source document, sized for the embeddings model.
type Chunk struct {
	Index   int    // Chunk index within the document (starts at 0)
	Section string // Heading trail, e.g. "# Admissions > ## Requirements"
	Text    string
}
