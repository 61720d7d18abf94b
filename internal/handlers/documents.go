package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campus-connect-ai/internal/contextutil"
	"campus-connect-ai/internal/storage"
)

// DocumentsHandler serves the ingested document registry.
type DocumentsHandler struct {
	registry storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(registry storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{registry: registry}
}

// DocumentResponse is one registry entry in the listing response.
type DocumentResponse struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Owner      string `json:"owner"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
	UpdatedAt  string `json:"updated_at"`
}

// ServeHTTP lists the ingested documents.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.registry.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, DocumentResponse{
			ID:         doc.ID,
			Source:     doc.Source,
			Owner:      doc.Owner,
			Title:      doc.Title,
			ChunkCount: doc.ChunkCount,
			UpdatedAt:  doc.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode documents response", "error", err)
	}
}
