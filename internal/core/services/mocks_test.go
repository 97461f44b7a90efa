package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockKnowledgeStore implements driven.KnowledgeStore and driven.KnowledgeWriter for testing.
type mockKnowledgeStore struct {
	mu         sync.Mutex
	chunks     []domain.KnowledgeChunk
	embeddings []domain.Embedding
	listErr      error
	replaceErr   error
	deleteErr    error
	listCalls    int
	replaceCalls int
}

func (m *mockKnowledgeStore) ListChunks(_ context.Context) ([]domain.KnowledgeChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.KnowledgeChunk, len(m.chunks))
	copy(out, m.chunks)
	return out, nil
}

func (m *mockKnowledgeStore) ListEmbeddings(_ context.Context) ([]domain.Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Embedding, len(m.embeddings))
	copy(out, m.embeddings)
	return out, nil
}

func (m *mockKnowledgeStore) ReplaceSource(
	_ context.Context, source string, chunks []domain.KnowledgeChunk, embeddings []domain.Embedding,
) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	removed := m.removeSource(source)
	m.chunks = append(m.chunks, chunks...)
	m.embeddings = append(m.embeddings, embeddings...)
	return removed, nil
}

func (m *mockKnowledgeStore) DeleteBySource(_ context.Context, source string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}

	return m.removeSource(source), nil
}

// removeSource drops the chunks of source and their embeddings.
func (m *mockKnowledgeStore) removeSource(source string) int {
	removed := make(map[string]bool)
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.Source == source {
			removed[c.ID] = true
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept

	keptEmb := m.embeddings[:0]
	for _, e := range m.embeddings {
		if !removed[e.KnowledgeChunkID] {
			keptEmb = append(keptEmb, e)
		}
	}
	m.embeddings = keptEmb

	return len(removed)
}

// add appends a chunk and, when vec is non-nil, its embedding.
func (m *mockKnowledgeStore) add(id, source, text string, vec []float32) *mockKnowledgeStore {
	m.chunks = append(m.chunks, domain.KnowledgeChunk{ID: id, Source: source, Text: text})
	if vec != nil {
		m.embeddings = append(m.embeddings, domain.Embedding{
			ID:               "emb-" + id,
			KnowledgeChunkID: id,
			Vector:           vec,
		})
	}
	return m
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It returns embedding for every text unless embedErr is set.
type mockEmbeddingService struct {
	mu         sync.Mutex
	embedding  []float32
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockPipeline implements driven.PostProcessorPipeline by splitting on blank lines.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.SourceDocument) ([]domain.KnowledgeChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var chunks []domain.KnowledgeChunk
	for i, part := range splitParagraphs(doc.Text) {
		chunks = append(chunks, domain.KnowledgeChunk{
			ID:      fmt.Sprintf("%s-%d", doc.Source, i),
			Source:  doc.Source,
			Text:    part,
			Ordinal: i,
		})
	}
	return chunks, nil
}

func splitParagraphs(text string) []string {
	var parts []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values  map[string]any
	setErr  error
	saveErr error
	saved   bool
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(_ string) []string {
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	m.saved = true
	return m.saveErr
}

func (m *mockConfigStore) Load() error {
	return nil
}

func (m *mockConfigStore) Path() string {
	return "mock://config.toml"
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err    error
	called bool
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.called = true
	return m.err
}

// mockNormaliser upper-cases text for the extensions it is registered under.
type mockNormaliser struct {
	err error
}

func (m *mockNormaliser) Extensions() []string {
	return []string{".html"}
}

func (m *mockNormaliser) Normalise(_ context.Context, doc *domain.SourceDocument) (*domain.SourceDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SourceDocument{Source: doc.Source, Text: strings.ToUpper(doc.Text)}, nil
}

// mockNormaliserRegistry maps extensions to a single normaliser.
type mockNormaliserRegistry struct {
	normaliser *mockNormaliser
}

func (m *mockNormaliserRegistry) ForExtension(ext string) (driven.Normaliser, bool) {
	for _, e := range m.normaliser.Extensions() {
		if e == ext {
			return m.normaliser, true
		}
	}
	return nil, false
}
