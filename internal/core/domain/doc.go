// Package domain defines the core business entities for the pharmacy
// knowledge-retrieval engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - KnowledgeChunk: A bounded unit of source text stored for retrieval
//   - Embedding: The vector representation of a chunk
//   - Intent: Coarse classification of a customer query
//   - RAGResult: The ranked outcome of one retrieval pass
//   - StructuredResponse: A templated answer built from a RAGResult
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
