// Package sqlite provides the SQLite knowledge base.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Chunks and their embeddings live in two tables; deleting a chunk cascades
// to its embedding.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Each applied version is recorded in schema_migrations.
//
// # Vectors
//
// Embedding vectors are stored as little-endian float32 BLOBs. Rows whose blob cannot
// be decoded are skipped when listing.
//
// # Data Location
//
// By default, the database is stored at ~/.pharmacy-rag/data/knowledge.db
package sqlite
