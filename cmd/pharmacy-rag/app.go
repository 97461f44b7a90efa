package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/pharmacy-rag/internal/core/services"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
	"github.com/custodia-labs/pharmacy-rag/internal/normalisers"
	"github.com/custodia-labs/pharmacy-rag/internal/postprocessors"
)

// bootstrap wires adapters to core services for one CLI invocation.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, func(), error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving config directory: %w", err)
		}
		configDir = dir
	}

	if err := file.LoadDotEnv(configDir); err != nil {
		logger.Warn("%v", err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}
	logger.Section("Bootstrap")
	logger.Debug("Config: %s", configStore.Path())
	logger.Debug("Storage: %s, embedding: %s", settings.Storage.Driver, settings.Embedding.Provider)

	if settings.Storage.Path == "" {
		settings.Storage.Path = filepath.Join(configDir, "data")
	}
	kb, err := storage.Open(ctx, settings.Storage)
	if err != nil {
		return nil, nil, err
	}

	// Retrieval degrades to lexical strategies without an embedder.
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		logger.Warn("%v; continuing with lexical search only", err)
		embedder = nil
	}

	retrieval := services.NewRetrievalService(kb, embedder)
	retrieval.SetDefaultLimit(settings.Retrieval.DefaultLimit)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, postprocessors.DefaultProcessors, map[string]map[string]any{
		"chunker": {
			"chunk_size": settings.Ingest.ChunkSize,
			"overlap":    settings.Ingest.ChunkOverlap,
		},
	})
	if err != nil {
		kb.Close()
		return nil, nil, err
	}

	ingest := services.NewIngestService(kb, pipeline, embedder)
	ingest.SetBatchSize(settings.Ingest.BatchSize)
	ingest.SetNormalisers(normalisers.NewDefaultRegistry())

	cleanup := func() {
		if embedder != nil {
			if err := embedder.Close(); err != nil {
				logger.Warn("closing embedding service: %v", err)
			}
		}
		if err := kb.Close(); err != nil {
			logger.Warn("closing knowledge base: %v", err)
		}
	}

	return &cli.Services{
		Retrieval: retrieval,
		Ingest:    ingest,
		Settings:  settingsService,
	}, cleanup, nil
}
