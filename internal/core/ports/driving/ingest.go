package driving

import "context"

// IngestReport summarises one ingestion run for a source.
type IngestReport struct {
	// Source is the ingested source identifier.
	Source string

	// Chunks is the number of chunks stored.
	Chunks int

	// Embedded is the number of chunks stored with an embedding.
	Embedded int

	// Replaced is the number of chunks removed from a previous ingestion.
	Replaced int
}

// IngestService loads source documents into the knowledge base.
// It is the external write path and never runs during retrieval.
type IngestService interface {
	// IngestText chunks, embeds and stores text under the given source,
	// replacing any previous chunks of that source.
	IngestText(ctx context.Context, source, text string) (*IngestReport, error)

	// IngestFile reads a file and ingests it using its base name as source.
	IngestFile(ctx context.Context, path string) (*IngestReport, error)

	// RemoveSource deletes every chunk of a source.
	RemoveSource(ctx context.Context, source string) (int, error)
}
