package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/records"
	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeBase = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeBase.
// Contents are lost when the process exits.
type KnowledgeStore struct {
	mu         sync.RWMutex
	chunks     map[string]domain.KnowledgeChunk
	embeddings map[string]domain.Embedding // keyed by chunk ID
}

// NewKnowledgeStore creates a new in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{
		chunks:     make(map[string]domain.KnowledgeChunk),
		embeddings: make(map[string]domain.Embedding),
	}
}

// ListChunks returns every chunk ordered by source then ordinal.
func (s *KnowledgeStore) ListChunks(_ context.Context) ([]domain.KnowledgeChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.KnowledgeChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i], chunks[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return a.ID < b.ID
	})
	return chunks, nil
}

// ListEmbeddings returns every embedding ordered by chunk ID.
func (s *KnowledgeStore) ListEmbeddings(_ context.Context) ([]domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embeddings := make([]domain.Embedding, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		e.Vector = append([]float32(nil), e.Vector...)
		embeddings = append(embeddings, e)
	}
	sort.Slice(embeddings, func(i, j int) bool {
		return embeddings[i].KnowledgeChunkID < embeddings[j].KnowledgeChunkID
	})
	return embeddings, nil
}

// ReplaceSource validates the batch, then swaps the chunks of source under
// a single lock.
func (s *KnowledgeStore) ReplaceSource(
	_ context.Context, source string,
	chunks []domain.KnowledgeChunk, embeddings []domain.Embedding,
) (int, error) {
	batch, err := records.NewBatch(source, chunks, embeddings)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := s.deleteSource(source)
	for _, r := range batch.Chunks {
		s.chunks[r.ID] = r.Domain()
	}
	for _, r := range batch.Embeddings {
		r.Vector = append([]float32(nil), r.Vector...)
		s.embeddings[r.KnowledgeChunkID] = r.Domain()
	}
	return replaced, nil
}

// DeleteBySource removes every chunk of a source together with its embedding.
func (s *KnowledgeStore) DeleteBySource(_ context.Context, source string) (int, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteSource(source), nil
}

// deleteSource removes the chunks of source. Callers hold the write lock.
func (s *KnowledgeStore) deleteSource(source string) int {
	removed := 0
	for id, c := range s.chunks {
		if c.Source != source {
			continue
		}
		delete(s.chunks, id)
		delete(s.embeddings, id)
		removed++
	}
	return removed
}

// Close is a no-op.
func (s *KnowledgeStore) Close() error {
	return nil
}
