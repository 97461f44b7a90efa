// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 120

// Processor splits document text into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from the document.
// Boundaries are counted in runes so multi-byte characters are never split,
// and a chunk ends at the last whitespace in its window when there is one.
func (p *Processor) Process(
	_ context.Context, doc *domain.SourceDocument, _ []domain.KnowledgeChunk,
) ([]domain.KnowledgeChunk, error) {
	text := []rune(strings.TrimSpace(doc.Text))
	if len(text) == 0 {
		return nil, nil
	}

	step := p.chunkSize - p.overlap
	chunks := make([]domain.KnowledgeChunk, 0, len(text)/step+1)

	start := 0
	for start < len(text) {
		end := start + p.chunkSize
		if end >= len(text) {
			end = len(text)
		} else if cut := lastSpace(text[start:end]); cut > p.overlap {
			end = start + cut
		}

		content := strings.TrimSpace(string(text[start:end]))
		if content != "" {
			chunks = append(chunks, domain.KnowledgeChunk{
				ID:      uuid.New().String(),
				Source:  doc.Source,
				Text:    content,
				Ordinal: len(chunks),
			})
		}

		if end == len(text) {
			break
		}
		start = end - p.overlap
	}

	return chunks, nil
}

// lastSpace returns the index of the last whitespace rune in window, or -1.
func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return -1
}
