package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// lexicalWeight is the score contributed by each term occurrence.
const lexicalWeight = 0.1

// LexicalSearch is the term-count fallback used when semantic signal is weak.
// It is not BM25: there is no IDF and no length normalisation.
type LexicalSearch struct {
	store driven.KnowledgeStore
}

// NewLexicalSearch creates a lexical search over store.
func NewLexicalSearch(store driven.KnowledgeStore) *LexicalSearch {
	return &LexicalSearch{store: store}
}

// LexicalScore returns min(0.1 * occurrences, 1) where occurrences is the
// total number of non-overlapping matches of terms in folded.
func LexicalScore(terms []string, folded string) float64 {
	count := 0
	for _, term := range terms {
		count += strings.Count(folded, term)
	}
	score := float64(count) * lexicalWeight
	if score > 1 {
		return 1
	}
	return score
}

// Search scores every chunk against the terms of query and returns up to
// k chunks scoring at least minScore, best first.
func (l *LexicalSearch) Search(
	ctx context.Context, query string, k int, minScore float64,
) ([]domain.SearchResult, error) {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return []domain.SearchResult{}, nil
	}

	chunks, err := l.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	results := []domain.SearchResult{}
	for _, chunk := range chunks {
		score := LexicalScore(terms, foldText(chunk.Text))
		if score == 0 || score < minScore {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("Lexical search: %d terms, %d results", len(terms), len(results))
	return results, nil
}
