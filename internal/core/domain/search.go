package domain

// SearchType records which stage of the gating ladder produced a result.
type SearchType string

// Gating ladder stages, in escalation order.
const (
	// SearchTypeVector is exhaustive cosine-similarity search.
	SearchTypeVector SearchType = "vector"

	// SearchTypeHybrid is the weighted merge of vector and lexical search.
	SearchTypeHybrid SearchType = "hybrid"

	// SearchTypeCategory is keyword-bounded search for the detected intent.
	SearchTypeCategory SearchType = "category"

	// SearchTypeFallback is vector search at the relaxed fallback threshold.
	SearchTypeFallback SearchType = "fallback"
)

// String returns the string representation.
func (t SearchType) String() string {
	return string(t)
}

// Description returns a human-readable description of the stage.
func (t SearchType) Description() string {
	switch t {
	case SearchTypeVector:
		return "Vector (semantic similarity)"
	case SearchTypeHybrid:
		return "Hybrid (semantic + term count)"
	case SearchTypeCategory:
		return "Category (intent keywords)"
	case SearchTypeFallback:
		return "Fallback (relaxed semantic)"
	default:
		return unknownDescription
	}
}

// SearchResult is a single ranked hit. It is transient and never persisted.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk KnowledgeChunk `json:"chunk"`

	// Score is the relevance signal. It is only meaningful relative to
	// the retrieval thresholds, not as a probability.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the final list.
	Rank int `json:"rank"`
}

// RAGResult is the outcome of one retrieval pass.
type RAGResult struct {
	// Chunks are the accepted results in rank order.
	Chunks []SearchResult `json:"chunks"`

	// AggregateScore is the mean score of Chunks (0 when empty).
	AggregateScore float64 `json:"aggregate_score"`

	// Sources are the distinct chunk sources in rank order.
	Sources []string `json:"sources"`

	// HasRelevantContext is true when at least one chunk was accepted.
	HasRelevantContext bool `json:"has_relevant_context"`

	// SearchType is the ladder stage that produced Chunks.
	SearchType SearchType `json:"search_type"`

	// TopScore is the best score among Chunks (0 when empty).
	TopScore float64 `json:"top_score"`

	// Intent is the detected query intent.
	Intent Intent `json:"intent"`

	// ExpandedQuery is the query after intent vocabulary was appended.
	ExpandedQuery string `json:"expanded_query"`
}

// NewRAGResult builds a RAGResult from ranked hits, assigning ranks and
// deriving the aggregate fields.
func NewRAGResult(hits []SearchResult, searchType SearchType, intent Intent, expanded string) *RAGResult {
	result := &RAGResult{
		Chunks:        make([]SearchResult, len(hits)),
		Sources:       []string{},
		SearchType:    searchType,
		Intent:        intent,
		ExpandedQuery: expanded,
	}

	seen := make(map[string]bool)
	var total float64
	for i, hit := range hits {
		hit.Rank = i + 1
		result.Chunks[i] = hit
		total += hit.Score
		if hit.Score > result.TopScore {
			result.TopScore = hit.Score
		}
		if !seen[hit.Chunk.Source] {
			seen[hit.Chunk.Source] = true
			result.Sources = append(result.Sources, hit.Chunk.Source)
		}
	}

	if len(hits) > 0 {
		result.AggregateScore = total / float64(len(hits))
	}
	result.HasRelevantContext = len(hits) > 0

	return result
}

// StructuredResponse is a templated answer for the chatbot.
type StructuredResponse struct {
	// Intent is the detected query intent that selected the template.
	Intent Intent `json:"intent"`

	// Response is the rendered answer text.
	Response string `json:"response"`

	// NeedsUserInput signals the caller should ask the user for more detail.
	NeedsUserInput bool `json:"needs_user_input"`

	// SuggestedActions are short next steps to offer the user.
	SuggestedActions []string `json:"suggested_actions"`
}
