package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

func newTestHybrid(store *mockKnowledgeStore) *HybridSearch {
	return NewHybridSearch(NewVectorSearch(store), NewLexicalSearch(store))
}

func TestHybridSearch_Search_MergesScores(t *testing.T) {
	store := (&mockKnowledgeStore{}).
		add("both", "a.md", "horario horario horario", vectorAt(0.5)).
		add("vector-only", "a.md", "sin coincidencias", vectorAt(0.6)).
		add("lexical-only", "a.md", "horario horario", nil)

	results, err := newTestHybrid(store).Search(context.Background(), "horario", queryVec, 12, 0.2)

	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := make(map[string]float64)
	for _, r := range results {
		byID[r.Chunk.ID] = r.Score
	}
	assert.InDelta(t, 0.7*0.5+0.3*0.3, byID["both"], 1e-3)
	assert.InDelta(t, 0.6, byID["vector-only"], 1e-3)
	assert.InDelta(t, 0.2, byID["lexical-only"], 1e-9)

	assert.Equal(t, "vector-only", results[0].Chunk.ID)
	assert.Equal(t, "both", results[1].Chunk.ID)
}

func TestHybridSearch_Search_VectorUnavailable(t *testing.T) {
	store := (&mockKnowledgeStore{}).
		add("c1", "a.md", "horario de la farmacia", vectorAt(0.9))

	results, err := newTestHybrid(store).Search(context.Background(), "horario farmacia", nil, 12, 0.2)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.2, results[0].Score, 1e-9)
}

func TestHybridSearch_Search_RefiltersAfterMerge(t *testing.T) {
	// Vector 0.22 and lexical 0.1 merge to 0.184 when both sides pass the minimum.
	store := (&mockKnowledgeStore{}).add("c1", "a.md", "horario", vectorAt(0.22))

	results, err := newTestHybrid(store).Search(context.Background(), "horario", queryVec, 12, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.7*0.22+0.3*0.1, results[0].Score, 1e-3)

	results, err = newTestHybrid(store).Search(context.Background(), "horario", queryVec, 12, 0.2)
	require.NoError(t, err)
	// The lexical side is filtered before merging, so only the vector score remains.
	require.Len(t, results, 1)
	assert.InDelta(t, 0.22, results[0].Score, 1e-3)
}

func TestMergeHybrid_Order(t *testing.T) {
	v := []domain.SearchResult{{Chunk: domain.KnowledgeChunk{ID: "a"}, Score: 0.5}}
	l := []domain.SearchResult{
		{Chunk: domain.KnowledgeChunk{ID: "b"}, Score: 0.3},
		{Chunk: domain.KnowledgeChunk{ID: "a"}, Score: 0.2},
	}

	merged := mergeHybrid(v, l)

	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Chunk.ID)
	assert.InDelta(t, 0.41, merged[0].Score, 1e-9)
	assert.Equal(t, "b", merged[1].Chunk.ID)
}
