// Package records holds the typed storage rows shared by the SQL adapters
// and validates them at the storage boundary.
package records

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Chunk is the persisted form of a knowledge chunk.
type Chunk struct {
	ID      string `validate:"required,max=128"`
	Source  string `validate:"required,max=512"`
	Text    string `validate:"required"`
	Ordinal int    `validate:"gte=0"`
}

// Embedding is the persisted form of a chunk embedding.
type Embedding struct {
	ID               string    `validate:"required,max=128"`
	KnowledgeChunkID string    `validate:"required,max=128"`
	Vector           []float32 `validate:"required,min=1"`
	CreatedAt        time.Time
}

// FromChunk converts and validates a domain chunk.
func FromChunk(c domain.KnowledgeChunk) (Chunk, error) {
	r := Chunk{ID: c.ID, Source: c.Source, Text: c.Text, Ordinal: c.Ordinal}
	if err := check(r); err != nil {
		return Chunk{}, fmt.Errorf("chunk %q: %w", c.ID, err)
	}
	return r, nil
}

// Domain converts the row back to a domain chunk.
func (r Chunk) Domain() domain.KnowledgeChunk {
	return domain.KnowledgeChunk{ID: r.ID, Source: r.Source, Text: r.Text, Ordinal: r.Ordinal}
}

// FromEmbedding converts and validates a domain embedding.
// Vectors with NaN or infinite components are rejected.
func FromEmbedding(e domain.Embedding) (Embedding, error) {
	r := Embedding{
		ID:               e.ID,
		KnowledgeChunkID: e.KnowledgeChunkID,
		Vector:           e.Vector,
		CreatedAt:        e.CreatedAt,
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if err := check(r); err != nil {
		return Embedding{}, fmt.Errorf("embedding %q: %w", e.ID, err)
	}
	if !finite(r.Vector) {
		return Embedding{}, fmt.Errorf("embedding %q: %w", e.ID, domain.ErrMalformedVector)
	}
	return r, nil
}

// Domain converts the row back to a domain embedding.
func (r Embedding) Domain() domain.Embedding {
	return domain.Embedding{
		ID:               r.ID,
		KnowledgeChunkID: r.KnowledgeChunkID,
		Vector:           r.Vector,
		CreatedAt:        r.CreatedAt,
	}
}

// check runs struct validation and maps failures to domain.ErrInvalidInput.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}

func finite(v []float32) bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
