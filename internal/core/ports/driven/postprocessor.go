package driven

import (
	"context"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// PostProcessor turns a source document into knowledge chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, whitespace cleanup).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor modifies chunks (e.g., cleanup), it receives and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	Process(
		ctx context.Context, doc *domain.SourceDocument, chunks []domain.KnowledgeChunk,
	) ([]domain.KnowledgeChunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.SourceDocument) ([]domain.KnowledgeChunk, error)
}
