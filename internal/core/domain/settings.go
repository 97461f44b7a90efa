package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables embeddings; retrieval runs lexical strategies only.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (lexical search only)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageDriver identifies the knowledge store backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageDriverSQLite is a local SQLite database file.
	StorageDriverSQLite StorageDriver = "sqlite"

	// StorageDriverPostgres is a PostgreSQL database.
	StorageDriverPostgres StorageDriver = "postgres"

	// StorageDriverMemory is a process-local store, lost on exit.
	StorageDriverMemory StorageDriver = "memory"
)

// IsValid returns true if the storage driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageDriverSQLite, StorageDriverPostgres, StorageDriverMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StorageDriver) String() string {
	return string(d)
}

// StorageSettings holds knowledge store configuration.
type StorageSettings struct {
	// Driver selects the backend.
	Driver StorageDriver

	// Path is the data directory for SQLite (empty uses the default).
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string

	// Cache enables the in-memory snapshot cache in front of the store.
	Cache bool
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size when non-zero.
	Dimensions int

	// Timeout bounds a single embedding request.
	Timeout time.Duration

	// RequestsPerSecond throttles calls to the provider (0 disables throttling).
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds retrieval behaviour configuration.
// The gating thresholds are fixed and deliberately not configurable.
type RetrievalSettings struct {
	// DefaultLimit is the number of chunks returned when a caller passes k <= 0.
	DefaultLimit int
}

// IngestSettings holds chunking configuration for ingestion.
type IngestSettings struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// ChunkOverlap is the number of runes shared by consecutive chunks.
	ChunkOverlap int

	// BatchSize is the number of chunks embedded per provider request.
	BatchSize int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Storage holds knowledge store settings.
	Storage StorageSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Retrieval holds retrieval settings.
	Retrieval RetrievalSettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings are left unconfigured; retrieval then runs on lexical strategies.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Driver: StorageDriverSQLite,
			Cache:  true,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderNone,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
		},
		Retrieval: RetrievalSettings{
			DefaultLimit: 5,
		},
		Ingest: IngestSettings{
			ChunkSize:    800,
			ChunkOverlap: 120,
			BatchSize:    32,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}
