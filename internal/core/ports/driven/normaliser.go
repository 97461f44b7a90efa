package driven

import (
	"context"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// Normaliser converts a file format into the plain text that is chunked.
type Normaliser interface {
	// Extensions returns the lower-case file extensions handled, with leading dot.
	Extensions() []string

	// Normalise returns a copy of doc with its Text reduced to plain text.
	Normalise(ctx context.Context, doc *domain.SourceDocument) (*domain.SourceDocument, error)
}

// NormaliserRegistry selects a Normaliser by file extension.
type NormaliserRegistry interface {
	// ForExtension returns the normaliser for ext, if one is registered.
	ForExtension(ext string) (Normaliser, bool)
}
