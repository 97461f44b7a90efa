package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchType_Description tests descriptions for every ladder stage
func TestSearchType_Description(t *testing.T) {
	tests := []struct {
		searchType SearchType
		expected   string
	}{
		{SearchTypeVector, "Vector (semantic similarity)"},
		{SearchTypeHybrid, "Hybrid (semantic + term count)"},
		{SearchTypeCategory, "Category (intent keywords)"},
		{SearchTypeFallback, "Fallback (relaxed semantic)"},
		{SearchType("other"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.searchType), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.searchType.Description())
		})
	}
}

// TestNewRAGResult_Empty tests an empty result has no relevant context
func TestNewRAGResult_Empty(t *testing.T) {
	result := NewRAGResult(nil, SearchTypeFallback, IntentHours, "horario")

	assert.False(t, result.HasRelevantContext)
	assert.Empty(t, result.Chunks)
	assert.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.TopScore)
	assert.Zero(t, result.AggregateScore)
	assert.Equal(t, SearchTypeFallback, result.SearchType)
	assert.Equal(t, IntentHours, result.Intent)
	assert.Equal(t, "horario", result.ExpandedQuery)
}

// TestNewRAGResult_DerivedFields tests ranks, sources and scores are derived
func TestNewRAGResult_DerivedFields(t *testing.T) {
	hits := []SearchResult{
		{Chunk: KnowledgeChunk{ID: "c1", Source: "horarios.md"}, Score: 0.9},
		{Chunk: KnowledgeChunk{ID: "c2", Source: "servicios.md"}, Score: 0.5},
		{Chunk: KnowledgeChunk{ID: "c3", Source: "horarios.md"}, Score: 0.4},
	}

	result := NewRAGResult(hits, SearchTypeVector, IntentHours, "q")

	require.Len(t, result.Chunks, 3)
	assert.True(t, result.HasRelevantContext)
	assert.Equal(t, 1, result.Chunks[0].Rank)
	assert.Equal(t, 2, result.Chunks[1].Rank)
	assert.Equal(t, 3, result.Chunks[2].Rank)
	assert.Equal(t, []string{"horarios.md", "servicios.md"}, result.Sources)
	assert.InDelta(t, 0.9, result.TopScore, 1e-9)
	assert.InDelta(t, 0.6, result.AggregateScore, 1e-9)
}

// TestNewRAGResult_DoesNotMutateInput tests that the input hits keep their rank
func TestNewRAGResult_DoesNotMutateInput(t *testing.T) {
	hits := []SearchResult{{Chunk: KnowledgeChunk{ID: "c1"}, Score: 0.3}}

	_ = NewRAGResult(hits, SearchTypeHybrid, IntentGeneral, "q")

	assert.Zero(t, hits[0].Rank)
}
