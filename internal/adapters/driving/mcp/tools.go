package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// SearchInput is the input schema for the search_knowledge tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the customer question to search the pharmacy knowledge base for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search_knowledge tool.
type SearchOutput struct {
	SearchType         string        `json:"search_type"`
	Intent             string        `json:"intent"`
	ExpandedQuery      string        `json:"expanded_query"`
	HasRelevantContext bool          `json:"has_relevant_context"`
	TopScore           float64       `json:"top_score"`
	AggregateScore     float64       `json:"aggregate_score"`
	Sources            []string      `json:"sources"`
	Results            []ChunkOutput `json:"results"`
	Count              int           `json:"count"`
}

// ChunkOutput is a single ranked chunk.
type ChunkOutput struct {
	Rank    int     `json:"rank"`
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// QueryInput is the input schema for tools that take only a query.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the customer question"`
}

// ContextOutput is the output schema for the get_context tool.
type ContextOutput struct {
	Context string `json:"context"`
	Found   bool   `json:"found"`
}

// AnswerOutput is the output schema for the answer_question tool.
type AnswerOutput struct {
	Intent           string   `json:"intent"`
	Response         string   `json:"response"`
	NeedsUserInput   bool     `json:"needs_user_input"`
	SuggestedActions []string `json:"suggested_actions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the pharmacy knowledge base and return ranked chunks with the retrieval stage that produced them",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_context",
		Description: "Return a context block of relevant knowledge for grounding a chatbot answer",
	}, s.handleContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Return a templated answer for the customer question, with suggested next actions",
	}, s.handleAnswer)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Retrieval.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(result), nil
}

func (s *Server) handleContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, ContextOutput, error) {
	text, err := s.ports.Retrieval.GenerateContext(ctx, input.Query)
	if err != nil {
		return nil, ContextOutput{}, err
	}
	return nil, ContextOutput{Context: text, Found: text != ""}, nil
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	resp, err := s.ports.Retrieval.GenerateStructuredResponse(ctx, input.Query)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	actions := resp.SuggestedActions
	if actions == nil {
		actions = []string{}
	}
	return nil, AnswerOutput{
		Intent:           resp.Intent.String(),
		Response:         resp.Response,
		NeedsUserInput:   resp.NeedsUserInput,
		SuggestedActions: actions,
	}, nil
}

func toSearchOutput(result *domain.RAGResult) SearchOutput {
	output := SearchOutput{
		SearchType:         result.SearchType.String(),
		Intent:             result.Intent.String(),
		ExpandedQuery:      result.ExpandedQuery,
		HasRelevantContext: result.HasRelevantContext,
		TopScore:           result.TopScore,
		AggregateScore:     result.AggregateScore,
		Sources:            result.Sources,
		Results:            make([]ChunkOutput, len(result.Chunks)),
		Count:              len(result.Chunks),
	}
	if output.Sources == nil {
		output.Sources = []string{}
	}

	for i, hit := range result.Chunks {
		output.Results[i] = ChunkOutput{
			Rank:    hit.Rank,
			ChunkID: hit.Chunk.ID,
			Source:  hit.Chunk.Source,
			Text:    hit.Chunk.Text,
			Score:   hit.Score,
		}
	}
	return output
}
