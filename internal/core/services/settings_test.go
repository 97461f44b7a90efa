package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage, settings.Storage)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Timeout, settings.Embedding.Timeout)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("storage.driver", "postgres")
	_ = store.Set("storage.dsn", "postgres://localhost/pharmacy")
	_ = store.Set("storage.cache", false)
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.timeout", "3s")
	_ = store.Set("embedding.requests_per_second", 2.5)
	_ = store.Set("retrieval.default_limit", int64(7))

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageDriverPostgres, settings.Storage.Driver)
	assert.Equal(t, "postgres://localhost/pharmacy", settings.Storage.DSN)
	assert.False(t, settings.Storage.Cache)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 3*time.Second, settings.Embedding.Timeout)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, 7, settings.Retrieval.DefaultLimit)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("storage.driver", "mysql")
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Driver, settings.Storage.Driver)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
}

func TestSettingsService_Get_InvalidTimeout(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("embedding.timeout", "soon")

	_, err := NewSettingsService(store, nil).Get()

	assert.Error(t, err)
}

func TestSettingsService_Save(t *testing.T) {
	store := newMockConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOllama
	settings.Embedding.Model = "all-minilm"
	settings.Retrieval.DefaultLimit = 9

	require.NoError(t, service.Save(&settings))

	assert.True(t, store.saved)
	assert.Equal(t, "ollama", store.values["embedding.provider"])
	assert.Equal(t, "10s", store.values["embedding.timeout"])

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", got.Embedding.Model)
	assert.Equal(t, 9, got.Retrieval.DefaultLimit)
}

func TestSettingsService_Save_Error(t *testing.T) {
	store := newMockConfigStore()
	store.setErr = errors.New("read-only")
	settings := domain.DefaultAppSettings()

	err := NewSettingsService(store, nil).Save(&settings)

	assert.Error(t, err)
}

func TestSettingsService_Set(t *testing.T) {
	store := newMockConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("retrieval.default_limit", "8"))
	require.NoError(t, service.Set("storage.cache", "false"))
	require.NoError(t, service.Set("embedding.timeout", "1500ms"))
	require.NoError(t, service.Set("embedding.requests_per_second", "0.5"))
	require.NoError(t, service.Set("embedding.provider", "ollama"))

	assert.Equal(t, 8, store.values["retrieval.default_limit"])
	assert.Equal(t, false, store.values["storage.cache"])
	assert.Equal(t, "1.5s", store.values["embedding.timeout"])
	assert.Equal(t, 0.5, store.values["embedding.requests_per_second"])
	assert.Equal(t, "ollama", store.values["embedding.provider"])
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	tests := []struct {
		key, value string
	}{
		{"unknown.key", "x"},
		{"retrieval.default_limit", "many"},
		{"storage.cache", "maybe"},
		{"embedding.timeout", "soon"},
		{"embedding.provider", "anthropic"},
		{"storage.driver", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(newMockConfigStore(), nil).Validate())
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		store := newMockConfigStore()
		_ = store.Set("storage.driver", "postgres")
		assert.Error(t, NewSettingsService(store, nil).Validate())
	})

	t.Run("openai without key", func(t *testing.T) {
		store := newMockConfigStore()
		_ = store.Set("embedding.provider", "openai")
		assert.Error(t, NewSettingsService(store, nil).Validate())
	})

	t.Run("overlap not below chunk size", func(t *testing.T) {
		store := newMockConfigStore()
		_ = store.Set("ingest.chunk_size", 100)
		_ = store.Set("ingest.chunk_overlap", 100)
		assert.Error(t, NewSettingsService(store, nil).Validate())
	})
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, NewSettingsService(newMockConfigStore(), nil).ValidateEmbeddingConfig())

	validator := &mockAIValidator{err: errors.New("unreachable")}
	err := NewSettingsService(newMockConfigStore(), validator).ValidateEmbeddingConfig()

	assert.Error(t, err)
	assert.True(t, validator.called)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
