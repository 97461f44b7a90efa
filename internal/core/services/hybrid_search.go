package services

import (
	"context"
	"errors"
	"sort"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// Weights for merging a chunk found by both strategies.
const (
	hybridVectorWeight  = 0.7
	hybridLexicalWeight = 0.3
)

// HybridSearch merges vector and lexical results by chunk ID.
type HybridSearch struct {
	vector  *VectorSearch
	lexical *LexicalSearch
}

// NewHybridSearch creates a hybrid search from its two strategies.
func NewHybridSearch(vector *VectorSearch, lexical *LexicalSearch) *HybridSearch {
	return &HybridSearch{vector: vector, lexical: lexical}
}

// Search runs both strategies with the same k and minScore. A chunk in both
// lists scores 0.7*vector + 0.3*lexical; otherwise its single score is kept.
// The merged list is sorted, truncated to k, then filtered by minScore again.
// A nil queryVector leaves the vector side empty.
func (h *HybridSearch) Search(
	ctx context.Context, query string, queryVector []float32, k int, minScore float64,
) ([]domain.SearchResult, error) {
	vectorHits, err := h.vector.Search(ctx, queryVector, k, minScore)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		logger.Debug("Hybrid: vector side unavailable, using lexical only")
		vectorHits = nil
	}

	lexicalHits, err := h.lexical.Search(ctx, query, k, minScore)
	if err != nil {
		return nil, err
	}

	merged := mergeHybrid(vectorHits, lexicalHits)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > k {
		merged = merged[:k]
	}

	results := []domain.SearchResult{}
	for _, r := range merged {
		if r.Score >= minScore {
			results = append(results, r)
		}
	}

	logger.Debug("Hybrid search: vector=%d lexical=%d merged=%d",
		len(vectorHits), len(lexicalHits), len(results))
	return results, nil
}

// mergeHybrid combines the two lists by chunk ID, keeping first-seen order
// (vector hits, then lexical-only hits).
func mergeHybrid(vectorHits, lexicalHits []domain.SearchResult) []domain.SearchResult {
	lexicalScores := make(map[string]float64, len(lexicalHits))
	for _, r := range lexicalHits {
		lexicalScores[r.Chunk.ID] = r.Score
	}

	merged := make([]domain.SearchResult, 0, len(vectorHits)+len(lexicalHits))
	inVector := make(map[string]bool, len(vectorHits))
	for _, r := range vectorHits {
		inVector[r.Chunk.ID] = true
		if lex, ok := lexicalScores[r.Chunk.ID]; ok {
			r.Score = hybridVectorWeight*r.Score + hybridLexicalWeight*lex
		}
		merged = append(merged, r)
	}
	for _, r := range lexicalHits {
		if !inVector[r.Chunk.ID] {
			merged = append(merged, r)
		}
	}
	return merged
}
