// Package storage opens the knowledge base selected by settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// Open returns the knowledge base for settings, wrapped in a snapshot cache
// when caching is enabled. SQLite caches also watch the database file.
func Open(ctx context.Context, settings domain.StorageSettings) (driven.KnowledgeBase, error) {
	var (
		kb        driven.KnowledgeBase
		watchPath string
	)

	switch settings.Driver {
	case domain.StorageDriverSQLite, "":
		store, err := sqlite.NewStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: sqlite: %v", domain.ErrStorageUnavailable, err)
		}
		kb, watchPath = store, store.Path()

	case domain.StorageDriverPostgres:
		store, err := postgres.NewStore(ctx, settings.DSN)
		if err != nil {
			return nil, err
		}
		kb = store

	case domain.StorageDriverMemory:
		kb = memory.NewKnowledgeStore()

	default:
		return nil, fmt.Errorf("%w: storage driver %s", domain.ErrUnsupportedType, settings.Driver)
	}

	// A memory store is never modified out of process.
	if !settings.Cache || settings.Driver == domain.StorageDriverMemory {
		return kb, nil
	}

	cached := cache.New(kb)
	if watchPath != "" {
		if err := cached.Watch(watchPath); err != nil {
			logger.Warn("knowledge cache will not follow external writes: %v", err)
		}
	}
	return cached, nil
}
