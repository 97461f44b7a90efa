package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// defaultBatchSize is the number of chunks embedded per request.
const defaultBatchSize = 32

// supportedExtensions lists file types IngestFile accepts when no
// normaliser registry is set.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// IngestService chunks, embeds and stores source documents.
type IngestService struct {
	writer           driven.KnowledgeWriter
	pipeline         driven.PostProcessorPipeline
	embeddingService driven.EmbeddingService
	normalisers      driven.NormaliserRegistry
	batchSize        int
}

// NewIngestService creates a new ingest service.
// The embeddingService parameter is optional (can be nil); chunks are then
// stored without embeddings and are only found by lexical strategies.
func NewIngestService(
	writer driven.KnowledgeWriter,
	pipeline driven.PostProcessorPipeline,
	embeddingService driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		writer:           writer,
		pipeline:         pipeline,
		embeddingService: embeddingService,
		batchSize:        defaultBatchSize,
	}
}

// SetBatchSize sets how many chunks are embedded per provider request.
func (s *IngestService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// SetNormalisers sets the registry IngestFile uses to convert files to
// plain text. Its extensions replace the built-in text and markdown set.
func (s *IngestService) SetNormalisers(r driven.NormaliserRegistry) {
	s.normalisers = r
}

// IngestText replaces the chunks of source with chunks of text.
func (s *IngestService) IngestText(ctx context.Context, source, text string) (*driving.IngestReport, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, source)
	}

	logger.Section("Ingest")
	logger.Debug("Source: %s (%d bytes)", source, len(text))

	chunks, err := s.pipeline.Process(ctx, &domain.SourceDocument{Source: source, Text: text})
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", source, err)
	}

	vectors := s.embedChunks(ctx, chunks)

	now := time.Now()
	var embeddings []domain.Embedding
	for i, chunk := range chunks {
		if vectors[i] == nil {
			continue
		}
		embeddings = append(embeddings, domain.Embedding{
			ID:               uuid.New().String(),
			KnowledgeChunkID: chunk.ID,
			Vector:           vectors[i],
			CreatedAt:        now,
		})
	}

	// Old chunks are removed in the same write that stores the new ones.
	replaced, err := s.writer.ReplaceSource(ctx, source, chunks, embeddings)
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", source, err)
	}

	report := &driving.IngestReport{
		Source:   source,
		Chunks:   len(chunks),
		Embedded: len(embeddings),
		Replaced: replaced,
	}

	logger.Info("Ingested %s: %d chunks, %d embedded, %d replaced",
		source, report.Chunks, report.Embedded, report.Replaced)
	return report, nil
}

// IngestFile reads a supported file and ingests it under its base name.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestReport, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var normaliser driven.Normaliser
	if s.normalisers != nil {
		n, ok := s.normalisers.ForExtension(ext)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
		}
		normaliser = n
	} else if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := &domain.SourceDocument{Source: filepath.Base(path), Text: string(data)}
	if normaliser != nil {
		doc, err = normaliser.Normalise(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("normalise %s: %w", path, err)
		}
	}

	return s.IngestText(ctx, doc.Source, doc.Text)
}

// RemoveSource deletes every chunk of source.
func (s *IngestService) RemoveSource(ctx context.Context, source string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}

	removed, err := s.writer.DeleteBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", source, err)
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotFound, source)
	}

	logger.Info("Removed %d chunks of %s", removed, source)
	return removed, nil
}

// embedChunks returns one vector per chunk, nil where embedding failed.
// A failed batch never aborts ingestion.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.KnowledgeChunk) [][]float32 {
	vectors := make([][]float32, len(chunks))
	if s.embeddingService == nil {
		logger.Debug("No embedding service; storing chunks without embeddings")
		return vectors
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Text
		}

		batch, err := s.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Embedding batch %d-%d failed: %v", start, end, err)
			continue
		}
		if len(batch) != len(texts) {
			logger.Warn("Embedding batch %d-%d returned %d vectors", start, end, len(batch))
			continue
		}
		for i, v := range batch {
			if len(v) > 0 {
				vectors[start+i] = v
			}
		}
	}

	dropMismatchedVectors(vectors)
	return vectors
}

// dropMismatchedVectors clears vectors whose length differs from the first
// non-nil vector, so one source never mixes dimensions.
func dropMismatchedVectors(vectors [][]float32) {
	dims := 0
	for i, v := range vectors {
		if v == nil {
			continue
		}
		if dims == 0 {
			dims = len(v)
			continue
		}
		if len(v) != dims {
			logger.Warn("Dropping embedding %d: %v (%d, want %d)", i, domain.ErrDimensionMismatch, len(v), dims)
			vectors[i] = nil
		}
	}
}
