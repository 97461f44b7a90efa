package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// VectorSearch ranks chunks by cosine similarity with an exhaustive scan.
type VectorSearch struct {
	store driven.KnowledgeStore
}

// NewVectorSearch creates a vector search over store.
func NewVectorSearch(store driven.KnowledgeStore) *VectorSearch {
	return &VectorSearch{store: store}
}

// Search compares query against every stored embedding and returns up to
// k chunks scoring at least minScore, best first.
//
// A nil query means the embedding provider was unavailable; the call
// returns domain.ErrEmbeddingUnavailable without touching the store.
// Embeddings that are empty, non-finite, or of a different dimension than
// the query are skipped.
func (v *VectorSearch) Search(
	ctx context.Context, query []float32, k int, minScore float64,
) ([]domain.SearchResult, error) {
	if query == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	chunks, err := v.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	embeddings, err := v.store.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	// First embedding per chunk wins.
	byChunk := make(map[string][]float32, len(embeddings))
	for _, e := range embeddings {
		if _, ok := byChunk[e.KnowledgeChunkID]; !ok {
			byChunk[e.KnowledgeChunkID] = e.Vector
		}
	}

	normalized := NormalizeVector(query)
	dims := len(normalized)

	var (
		candidates []domain.KnowledgeChunk
		vectors    [][]float32
		skipped    int
	)
	for _, chunk := range chunks {
		vec, ok := byChunk[chunk.ID]
		if !ok {
			continue
		}
		if !isUsableVector(vec, dims) {
			skipped++
			continue
		}
		candidates = append(candidates, chunk)
		vectors = append(vectors, vec)
	}

	if skipped > 0 {
		logger.Warn("Skipped %d malformed embeddings (query dimension %d)", skipped, dims)
	}

	results := []domain.SearchResult{}
	for _, m := range FindTopKSimilar(normalized, vectors, len(vectors)) {
		if m.Score < minScore || len(results) == k {
			break
		}
		results = append(results, domain.SearchResult{Chunk: candidates[m.Index], Score: m.Score})
	}

	logger.Debug("Vector search: %d results (k=%d, minScore=%.2f)", len(results), k, minScore)
	return results, nil
}
