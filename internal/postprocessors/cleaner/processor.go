// Package cleaner provides a chunk text cleanup processor.
package cleaner

import (
	"context"
	"strings"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// Processor collapses whitespace runs inside chunk text and drops chunks
// left empty. It must run after a processor that creates chunks.
type Processor struct{}

// New creates a cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process rewrites each chunk's text as its whitespace-separated fields
// joined by single spaces.
func (p *Processor) Process(
	_ context.Context, _ *domain.SourceDocument, chunks []domain.KnowledgeChunk,
) ([]domain.KnowledgeChunk, error) {
	out := make([]domain.KnowledgeChunk, 0, len(chunks))
	for _, chunk := range chunks {
		chunk.Text = strings.Join(strings.Fields(chunk.Text), " ")
		if chunk.Text == "" {
			continue
		}
		out = append(out, chunk)
	}
	return out, nil
}
