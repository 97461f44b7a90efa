package driven

import (
	"context"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// KnowledgeStore is the read path over the knowledge base.
// Retrieval treats it as read-only. A failure to read is fatal for the
// retrieval pass and must be returned wrapping domain.ErrStorageUnavailable.
type KnowledgeStore interface {
	// ListChunks returns every chunk ordered by source then ordinal.
	ListChunks(ctx context.Context) ([]domain.KnowledgeChunk, error)

	// ListEmbeddings returns every decodable embedding. Records that cannot
	// be decoded are skipped rather than failing the call.
	ListEmbeddings(ctx context.Context) ([]domain.Embedding, error)
}

// KnowledgeWriter is the write path over the knowledge base.
// It belongs to ingestion and is never used by retrieval.
type KnowledgeWriter interface {
	// ReplaceSource swaps every chunk of source, with its embedding, for
	// chunks and embeddings in one atomic write: either all of it is stored
	// or the source is left as it was. Every chunk must belong to source and
	// every embedding to one of chunks. Returns the number of chunks replaced.
	ReplaceSource(
		ctx context.Context, source string,
		chunks []domain.KnowledgeChunk, embeddings []domain.Embedding,
	) (int, error)

	// DeleteBySource removes every chunk of a source and, by cascade, their embeddings.
	// Returns the number of chunks removed.
	DeleteBySource(ctx context.Context, source string) (int, error)
}

// KnowledgeBase combines both paths. Storage adapters implement it.
type KnowledgeBase interface {
	KnowledgeStore
	KnowledgeWriter

	// Close releases resources.
	Close() error
}
