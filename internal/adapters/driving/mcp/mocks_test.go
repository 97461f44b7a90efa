package mcp

import (
	"context"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result    *domain.RAGResult
	context   string
	response  *domain.StructuredResponse
	err       error
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) (*domain.RAGResult, error) {
	m.lastQuery = query
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return domain.NewRAGResult(nil, domain.SearchTypeFallback, domain.IntentGeneral, query), nil
	}
	return m.result, nil
}

func (m *mockRetrievalService) GenerateContext(_ context.Context, query string) (string, error) {
	m.lastQuery = query
	return m.context, m.err
}

func (m *mockRetrievalService) GenerateStructuredResponse(
	_ context.Context,
	query string,
) (*domain.StructuredResponse, error) {
	m.lastQuery = query
	return m.response, m.err
}
