package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Gating ladder parameters.
const (
	TopKVector       = 12
	TopKLexical      = 12
	MinScoreVector   = 0.22
	MinScoreHybrid   = 0.20
	MinScoreCategory = 0.20
	MinScoreFallback = 0.15
	GatingThreshold  = 0.18

	// DefaultLimit is used when a caller passes k <= 0.
	DefaultLimit = 5
)

// RetrievalService runs the gating ladder: vector, hybrid, category and
// finally relaxed vector search, stopping at the first stage that yields
// results. It holds no per-query state and is safe for concurrent use.
type RetrievalService struct {
	embeddingService driven.EmbeddingService
	vector           *VectorSearch
	hybrid           *HybridSearch
	category         *CategorySearch
	defaultLimit     int
}

// NewRetrievalService creates a retrieval service over store.
// The embeddingService parameter is optional (can be nil); without it every
// query escalates past the vector stage.
func NewRetrievalService(
	store driven.KnowledgeStore,
	embeddingService driven.EmbeddingService,
) *RetrievalService {
	vector := NewVectorSearch(store)
	return &RetrievalService{
		embeddingService: embeddingService,
		vector:           vector,
		hybrid:           NewHybridSearch(vector, NewLexicalSearch(store)),
		category:         NewCategorySearch(store),
		defaultLimit:     DefaultLimit,
	}
}

// SetDefaultLimit sets the limit used when Search is called with k <= 0.
func (s *RetrievalService) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.defaultLimit = limit
	}
}

// Search retrieves up to k chunks for query.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) (*domain.RAGResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return domain.NewRAGResult(nil, domain.SearchTypeFallback, domain.IntentGeneral, ""), nil
	}

	if k <= 0 {
		k = s.defaultLimit
	}

	intent := DetectIntent(query)
	expanded := ExpandQuery(query, intent)
	logger.Info("Intent: %s", intent)
	logger.Debug("Expanded query: %q", expanded)

	queryVector := s.embedQuery(ctx, expanded)

	// Stage 1: vector.
	hits, err := s.vectorStage(ctx, queryVector, MinScoreVector)
	if err != nil {
		return nil, fmt.Errorf("vector stage: %w", err)
	}
	topScore := 0.0
	if len(hits) > 0 {
		topScore = hits[0].Score
	}
	logger.Debug("Vector stage: %d hits, top score %.3f", len(hits), topScore)
	if topScore >= GatingThreshold {
		return s.accept(hits, k, domain.SearchTypeVector, intent, expanded), nil
	}

	// Stage 2: hybrid.
	hits, err = s.hybrid.Search(ctx, expanded, queryVector, TopKLexical, MinScoreHybrid)
	if err != nil {
		return nil, fmt.Errorf("hybrid stage: %w", err)
	}
	if len(hits) > 0 {
		return s.accept(hits, k, domain.SearchTypeHybrid, intent, expanded), nil
	}

	// Stage 3: category.
	if intent.CategoryEligible() {
		hits, err = s.category.Search(ctx, intent, k, MinScoreCategory)
		if err != nil {
			return nil, fmt.Errorf("category stage: %w", err)
		}
		if len(hits) > 0 {
			return s.accept(hits, k, domain.SearchTypeCategory, intent, expanded), nil
		}
	}

	// Stage 4: relaxed vector.
	hits, err = s.vectorStage(ctx, queryVector, MinScoreFallback)
	if err != nil {
		return nil, fmt.Errorf("fallback stage: %w", err)
	}
	return s.accept(hits, k, domain.SearchTypeFallback, intent, expanded), nil
}

// embedQuery embeds text once per query. Any failure is logged and
// reported as a nil vector so the ladder escalates.
func (s *RetrievalService) embedQuery(ctx context.Context, text string) []float32 {
	if s.embeddingService == nil {
		logger.Debug("No embedding service configured")
		return nil
	}

	vec, err := s.embeddingService.Embed(ctx, text)
	if err != nil {
		logger.Warn("Embedding unavailable: %v", err)
		return nil
	}
	if !isUsableVector(vec, len(vec)) {
		logger.Warn("Embedding service returned an unusable vector (%d dimensions)", len(vec))
		return nil
	}
	return vec
}

// vectorStage runs vector search, mapping provider unavailability to no hits.
func (s *RetrievalService) vectorStage(
	ctx context.Context, queryVector []float32, minScore float64,
) ([]domain.SearchResult, error) {
	hits, err := s.vector.Search(ctx, queryVector, TopKVector, minScore)
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return nil, nil
	}
	return hits, err
}

func (s *RetrievalService) accept(
	hits []domain.SearchResult, k int, searchType domain.SearchType, intent domain.Intent, expanded string,
) *domain.RAGResult {
	if len(hits) > k {
		hits = hits[:k]
	}
	logger.Info("Accepted %d results from %s stage", len(hits), searchType)
	return domain.NewRAGResult(hits, searchType, intent, expanded)
}
