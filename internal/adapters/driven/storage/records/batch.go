package records

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// Batch is the validated new content of one source.
type Batch struct {
	Source     string
	Chunks     []Chunk
	Embeddings []Embedding
}

// NewBatch validates chunks and embeddings as the complete replacement of
// source. Nothing is written unless the whole batch is valid.
func NewBatch(source string, chunks []domain.KnowledgeChunk, embeddings []domain.Embedding) (*Batch, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}

	b := &Batch{
		Source:     source,
		Chunks:     make([]Chunk, 0, len(chunks)),
		Embeddings: make([]Embedding, 0, len(embeddings)),
	}

	ids := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		r, err := FromChunk(c)
		if err != nil {
			return nil, err
		}
		if r.Source != source {
			return nil, fmt.Errorf("%w: chunk %q belongs to %q, not %q",
				domain.ErrInvalidInput, r.ID, r.Source, source)
		}
		if ids[r.ID] {
			return nil, fmt.Errorf("%w: duplicate chunk %q", domain.ErrInvalidInput, r.ID)
		}
		ids[r.ID] = true
		b.Chunks = append(b.Chunks, r)
	}

	embedded := make(map[string]bool, len(embeddings))
	for _, e := range embeddings {
		r, err := FromEmbedding(e)
		if err != nil {
			return nil, err
		}
		if !ids[r.KnowledgeChunkID] {
			return nil, fmt.Errorf("embedding %s: chunk %s: %w", r.ID, r.KnowledgeChunkID, domain.ErrNotFound)
		}
		if embedded[r.KnowledgeChunkID] {
			return nil, fmt.Errorf("%w: chunk %q embedded twice", domain.ErrInvalidInput, r.KnowledgeChunkID)
		}
		embedded[r.KnowledgeChunkID] = true
		b.Embeddings = append(b.Embeddings, r)
	}

	return b, nil
}
