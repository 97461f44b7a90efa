package domain

import "time"

// KnowledgeChunk is a bounded unit of source text stored for retrieval.
// Chunks are immutable once created and are only destroyed when their
// source is removed, which cascades to their embedding.
type KnowledgeChunk struct {
	// ID is the stable, unique identifier for the chunk.
	ID string `json:"id"`

	// Source identifies the origin document (file name, URL, etc).
	Source string `json:"source"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Ordinal is the position of the chunk within its source.
	Ordinal int `json:"ordinal"`
}

// Embedding is the fixed-dimension vector representation of a chunk.
// It is owned by its KnowledgeChunk and shares its lifecycle.
type Embedding struct {
	// ID is the unique identifier for the embedding.
	ID string `json:"id"`

	// KnowledgeChunkID links to the owning chunk.
	KnowledgeChunkID string `json:"knowledge_chunk_id"`

	// Vector is the ordered list of components.
	Vector []float32 `json:"vector"`

	// CreatedAt is when the embedding was generated.
	CreatedAt time.Time `json:"created_at"`
}

// SourceDocument is raw text submitted for ingestion before chunking.
type SourceDocument struct {
	// Source identifies the document; it becomes each chunk's Source.
	Source string `json:"source"`

	// Text is the full document content.
	Text string `json:"text"`
}
