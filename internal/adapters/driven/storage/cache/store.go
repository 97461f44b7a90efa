// Package cache provides a snapshot cache in front of a knowledge base.
//
// Reads are served from the last snapshot until it is invalidated, either
// by a write through the cache, an explicit Invalidate, or a filesystem
// event on a watched database file.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeBase = (*Store)(nil)

// Store caches ListChunks and ListEmbeddings of the wrapped knowledge base.
type Store struct {
	inner driven.KnowledgeBase

	mu         sync.RWMutex
	generation uint64
	chunks     []domain.KnowledgeChunk
	embeddings []domain.Embedding
	hasChunks  bool
	hasEmbeds  bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New wraps inner with a snapshot cache.
func New(inner driven.KnowledgeBase) *Store {
	return &Store{inner: inner}
}

// ListChunks returns the cached chunks, loading them on first use.
func (s *Store) ListChunks(ctx context.Context) ([]domain.KnowledgeChunk, error) {
	s.mu.RLock()
	if s.hasChunks {
		chunks := s.chunks
		s.mu.RUnlock()
		return append([]domain.KnowledgeChunk(nil), chunks...), nil
	}
	gen := s.generation
	s.mu.RUnlock()

	chunks, err := s.inner.ListChunks(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.chunks = chunks
		s.hasChunks = true
	}
	s.mu.Unlock()

	return append([]domain.KnowledgeChunk(nil), chunks...), nil
}

// ListEmbeddings returns the cached embeddings, loading them on first use.
func (s *Store) ListEmbeddings(ctx context.Context) ([]domain.Embedding, error) {
	s.mu.RLock()
	if s.hasEmbeds {
		embeddings := s.embeddings
		s.mu.RUnlock()
		return append([]domain.Embedding(nil), embeddings...), nil
	}
	gen := s.generation
	s.mu.RUnlock()

	embeddings, err := s.inner.ListEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.embeddings = embeddings
		s.hasEmbeds = true
	}
	s.mu.Unlock()

	return append([]domain.Embedding(nil), embeddings...), nil
}

// ReplaceSource writes through and invalidates the snapshot.
func (s *Store) ReplaceSource(
	ctx context.Context, source string,
	chunks []domain.KnowledgeChunk, embeddings []domain.Embedding,
) (int, error) {
	defer s.Invalidate()
	return s.inner.ReplaceSource(ctx, source, chunks, embeddings)
}

// DeleteBySource writes through and invalidates the snapshot.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int, error) {
	defer s.Invalidate()
	return s.inner.DeleteBySource(ctx, source)
}

// Invalidate drops the snapshot. Loads already in flight are discarded.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.chunks = nil
	s.embeddings = nil
	s.hasChunks = false
	s.hasEmbeds = false
}

// Watch invalidates the snapshot whenever path, or a sibling file sharing
// its name as prefix (such as SQLite -wal and -shm files), changes.
func (s *Store) Watch(path string) error {
	if s.watcher != nil {
		return errors.New("cache: already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.loop(filepath.Base(path))

	logger.Debug("cache: watching %s", path)
	return nil
}

func (s *Store) loop(base string) {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.handleEvent(base, event) {
				logger.Debug("cache: invalidated by %s", event)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("cache: watcher error: %v", err)
			s.Invalidate()
		}
	}
}

// handleEvent invalidates on content changes to watched files.
// Reports whether the snapshot was invalidated.
func (s *Store) handleEvent(base string, event fsnotify.Event) bool {
	if !strings.HasPrefix(filepath.Base(event.Name), base) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	s.Invalidate()
	return true
}

// Close stops watching and closes the wrapped knowledge base.
func (s *Store) Close() error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			logger.Warn("cache: closing watcher: %v", err)
		}
		<-s.done
		s.watcher = nil
	}
	return s.inner.Close()
}
