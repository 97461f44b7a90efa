package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageDriver   = "storage.driver"
	keyStoragePath     = "storage.path"
	keyStorageDSN      = "storage.dsn"
	keyStorageCache    = "storage.cache"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedTimeout    = "embedding.timeout"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyRetrievalLimit  = "retrieval.default_limit"
	keyIngestChunkSize = "ingest.chunk_size"
	keyIngestOverlap   = "ingest.chunk_overlap"
	keyIngestBatchSize = "ingest.batch_size"
)

// settingKind describes how Set parses a raw string value.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindFloat
	kindDuration
	kindProvider
	kindDriver
)

// settingKinds lists every key Set accepts.
var settingKinds = map[string]settingKind{
	keyStorageDriver:   kindDriver,
	keyStoragePath:     kindString,
	keyStorageDSN:      kindString,
	keyStorageCache:    kindBool,
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyEmbedTimeout:    kindDuration,
	keyEmbedRPS:        kindFloat,
	keyRetrievalLimit:  kindInt,
	keyIngestChunkSize: kindInt,
	keyIngestOverlap:   kindInt,
	keyIngestBatchSize: kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Driver: s.getDriver(defaults.Storage.Driver),
			Path:   s.configStore.GetString(keyStoragePath), // Empty means the default data directory
			DSN:    s.configStore.GetString(keyStorageDSN),
			Cache:  s.getBool(keyStorageCache, defaults.Storage.Cache),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			Timeout:           timeout,
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			DefaultLimit: s.getInt(keyRetrievalLimit, defaults.Retrieval.DefaultLimit),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:    s.getInt(keyIngestChunkSize, defaults.Ingest.ChunkSize),
			ChunkOverlap: s.getInt(keyIngestOverlap, defaults.Ingest.ChunkOverlap),
			BatchSize:    s.getInt(keyIngestBatchSize, defaults.Ingest.BatchSize),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStorageDriver, settings.Storage.Driver.String()},
		{keyStoragePath, settings.Storage.Path},
		{keyStorageDSN, settings.Storage.DSN},
		{keyStorageCache, settings.Storage.Cache},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyRetrievalLimit, settings.Retrieval.DefaultLimit},
		{keyIngestChunkSize, settings.Ingest.ChunkSize},
		{keyIngestOverlap, settings.Ingest.ChunkOverlap},
		{keyIngestBatchSize, settings.Ingest.BatchSize},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", v.key, err)
		}
	}

	return s.configStore.Save()
}

// Set parses value for the type of key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Validate checks if current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch settings.Storage.Driver {
	case domain.StorageDriverPostgres:
		if settings.Storage.DSN == "" {
			return fmt.Errorf("storage driver %q requires storage.dsn", settings.Storage.Driver)
		}
	case domain.StorageDriverSQLite, domain.StorageDriverMemory:
	default:
		return fmt.Errorf("invalid storage driver: %s", settings.Storage.Driver)
	}

	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		return fmt.Errorf(
			"embedding provider %q requires an API key",
			settings.Embedding.Provider.Description(),
		)
	}

	if settings.Retrieval.DefaultLimit <= 0 {
		return fmt.Errorf("retrieval.default_limit must be positive, got %d", settings.Retrieval.DefaultLimit)
	}
	if settings.Ingest.ChunkOverlap >= settings.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			settings.Ingest.ChunkOverlap, settings.Ingest.ChunkSize)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindBool:
		return strconv.ParseBool(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindDriver:
		if !domain.StorageDriver(value).IsValid() {
			return nil, fmt.Errorf("unknown storage driver %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	val := s.configStore.GetString(keyStorageDriver)
	if val == "" {
		return defaultVal
	}
	driver := domain.StorageDriver(val)
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}
