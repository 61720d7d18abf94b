package storage

import "time"

// Document is one ingested source document tracked in the registry.
// Its chunks live in the vector store; the registry keeps enough metadata
// to skip unchanged files on re-ingest and to answer listing requests.
type Document struct {
	ID         string // UUID
	Source     string // Relative path or URL the document came from
	Owner      string // Department or collection the document belongs to
	Title      string
	Hash       string // SHA256 hex string of the source content
	ChunkCount int
	UpdatedAt  time.Time
}
