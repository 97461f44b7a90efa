package driving

import (
	"context"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// RetrievalService answers customer queries from the knowledge base.
type RetrievalService interface {
	// Search runs the gating ladder and returns at most k ranked chunks.
	// A nil error with HasRelevantContext false means "no data".
	Search(ctx context.Context, query string, k int) (*domain.RAGResult, error)

	// GenerateContext renders the relevant chunks as a plain context block.
	// Returns an empty string when nothing clears the context cutoff.
	GenerateContext(ctx context.Context, query string) (string, error)

	// GenerateStructuredResponse renders a templated answer for the detected intent.
	GenerateStructuredResponse(ctx context.Context, query string) (*domain.StructuredResponse, error)
}
