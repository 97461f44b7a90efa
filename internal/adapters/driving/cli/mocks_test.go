package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
)

// mockRetrievalService returns one canned hit for any non-empty query.
type mockRetrievalService struct {
	empty     bool
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
	if m.empty {
		return domain.NewRAGResult(nil, domain.SearchTypeFallback, domain.IntentGeneral, query), nil
	}
	hits := []domain.SearchResult{{
		Chunk: domain.KnowledgeChunk{
			ID:      "chunk-1",
			Source:  "hours.md",
			Text:    "The pharmacy is open Monday to Saturday,\n9am to 6pm.",
			Ordinal: 0,
		},
		Score: 0.71,
	}}
	return domain.NewRAGResult(hits, domain.SearchTypeVector, domain.IntentHours, query+" open"), nil
}

func (m *mockRetrievalService) GenerateContext(_ context.Context, query string) (string, error) {
	m.lastQuery = query
	if m.err != nil {
		return "", m.err
	}
	if m.empty {
		return "", nil
	}
	return "The pharmacy is open Monday to Saturday, 9am to 6pm.", nil
}

func (m *mockRetrievalService) GenerateStructuredResponse(
	_ context.Context,
	query string,
) (*domain.StructuredResponse, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return &domain.StructuredResponse{
		Intent:           domain.IntentHours,
		Response:         "We are open Monday to Saturday, 9am to 6pm.",
		SuggestedActions: []string{"Find the nearest branch"},
	}, nil
}

// mockIngestService records ingested sources and mirrors the file type rules.
type mockIngestService struct {
	ingested []string
	texts    map[string]string
	removed  []string
	err      error
}

func (m *mockIngestService) IngestText(_ context.Context, source, text string) (*driving.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.texts == nil {
		m.texts = make(map[string]string)
	}
	m.ingested = append(m.ingested, source)
	m.texts[source] = text
	return &driving.IngestReport{Source: source, Chunks: 2, Embedded: 1}, nil
}

func (m *mockIngestService) IngestFile(ctx context.Context, path string) (*driving.IngestReport, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md", ".markdown", ".html", ".htm":
	default:
		return nil, domain.ErrUnsupportedType
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return m.IngestText(ctx, filepath.Base(path), string(data))
}

func (m *mockIngestService) RemoveSource(_ context.Context, source string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.removed = append(m.removed, source)
	return 3, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	setErr      error
	validateErr error
	embedErr    error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.embedErr
}

// setupTestServices injects mock services and returns a cleanup func that
// restores the previous services and resets command flags.
func setupTestServices() func() {
	return setupServices(&mockRetrievalService{}, &mockIngestService{}, newMockSettingsService())
}

func setupServices(
	retrieval driving.RetrievalService,
	ingest driving.IngestService,
	settings driving.SettingsService,
) func() {
	prevRetrieval, prevIngest, prevSettings := retrievalService, ingestService, settingsService
	prevBootstrap := bootstrap

	SetServices(&Services{Retrieval: retrieval, Ingest: ingest, Settings: settings})
	bootstrap = nil

	return func() {
		retrievalService, ingestService, settingsService = prevRetrieval, prevIngest, prevSettings
		bootstrap = prevBootstrap
		searchLimit = 0
		searchJSON = false
		answerJSON = false
		ingestStdin = false
		ingestSource = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}
