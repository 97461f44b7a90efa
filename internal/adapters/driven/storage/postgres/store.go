// Package postgres provides the PostgreSQL knowledge base.
//
// Vectors are stored in pgvector text form ("[0.1,0.2]") in a TEXT column
// and encoded with pgvector-go, so the pgvector extension is not required.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/records"
	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// foreignKeyViolation is the SQLSTATE for a foreign key violation.
const foreignKeyViolation = "23503"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_chunks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		text TEXT NOT NULL,
		ordinal INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_source ON knowledge_chunks (source, ordinal)`,
	`CREATE TABLE IF NOT EXISTS embeddings (
		id TEXT PRIMARY KEY,
		knowledge_chunk_id TEXT NOT NULL UNIQUE REFERENCES knowledge_chunks (id) ON DELETE CASCADE,
		vector TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Store is the PostgreSQL-backed knowledge base.
type Store struct {
	db *sql.DB
}

var _ driven.KnowledgeBase = (*Store)(nil)

// NewStore connects to dsn and creates the schema if needed.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", domain.ErrStorageUnavailable, err)
	}

	s := NewStoreWithDB(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an existing connection. The schema is not touched.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListChunks returns every chunk ordered by source then ordinal.
func (s *Store) ListChunks(ctx context.Context) ([]domain.KnowledgeChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, text, ordinal FROM knowledge_chunks
		ORDER BY source, ordinal, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: query chunks: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		var r records.Chunk
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Ordinal); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", domain.ErrStorageUnavailable, err)
		}
		chunks = append(chunks, r.Domain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chunks: %v", domain.ErrStorageUnavailable, err)
	}
	return chunks, nil
}

// ListEmbeddings returns every embedding whose vector parses.
func (s *Store) ListEmbeddings(ctx context.Context) ([]domain.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, knowledge_chunk_id, vector, created_at FROM embeddings
		ORDER BY knowledge_chunk_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: query embeddings: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var embeddings []domain.Embedding
	for rows.Next() {
		var (
			r         records.Embedding
			raw       []byte
			createdAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.KnowledgeChunkID, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan embedding: %v", domain.ErrStorageUnavailable, err)
		}

		vector, err := parseVector(raw)
		if err != nil {
			logger.Warn("skipping embedding %s: %v", r.ID, err)
			continue
		}
		r.Vector = vector
		r.CreatedAt = createdAt.Time
		embeddings = append(embeddings, r.Domain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate embeddings: %v", domain.ErrStorageUnavailable, err)
	}
	return embeddings, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplaceSource swaps the chunks of source for the batch in one transaction.
func (s *Store) ReplaceSource(
	ctx context.Context, source string,
	chunks []domain.KnowledgeChunk, embeddings []domain.Embedding,
) (int, error) {
	batch, err := records.NewBatch(source, chunks, embeddings)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	replaced, err := deleteSource(ctx, tx, source)
	if err != nil {
		return 0, err
	}
	for _, r := range batch.Chunks {
		if err := insertChunk(ctx, tx, r); err != nil {
			return 0, err
		}
	}
	for _, r := range batch.Embeddings {
		if err := insertEmbedding(ctx, tx, r); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", source, err)
	}
	return replaced, nil
}

// DeleteBySource removes every chunk of a source. Embeddings go by cascade.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}
	return deleteSource(ctx, s.db, source)
}

func insertChunk(ctx context.Context, ex execer, r records.Chunk) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO knowledge_chunks (id, source, text, ordinal)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			text = EXCLUDED.text,
			ordinal = EXCLUDED.ordinal
	`, r.ID, r.Source, r.Text, r.Ordinal)
	if err != nil {
		return fmt.Errorf("save chunk %s: %w", r.ID, err)
	}
	return nil
}

func insertEmbedding(ctx context.Context, ex execer, r records.Embedding) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO embeddings (id, knowledge_chunk_id, vector, dimensions, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (knowledge_chunk_id) DO UPDATE SET
			id = EXCLUDED.id,
			vector = EXCLUDED.vector,
			dimensions = EXCLUDED.dimensions,
			created_at = EXCLUDED.created_at
	`, r.ID, r.KnowledgeChunkID, pgvector.NewVector(r.Vector), len(r.Vector), r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("embedding %s: chunk %s: %w", r.ID, r.KnowledgeChunkID, domain.ErrNotFound)
		}
		return fmt.Errorf("save embedding %s: %w", r.ID, err)
	}
	return nil
}

func deleteSource(ctx context.Context, ex execer, source string) (int, error) {
	res, err := ex.ExecContext(ctx, `DELETE FROM knowledge_chunks WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", source, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted chunks: %w", err)
	}
	return int(n), nil
}

// parseVector decodes a stored vector. Anything pgvector-go rejects, or an
// empty vector, is ErrMalformedVector.
func parseVector(raw []byte) ([]float32, error) {
	// pgvector.Vector.Parse slices off the brackets unchecked.
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedVector, raw)
	}

	var v pgvector.Vector
	if err := v.Scan(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedVector, err)
	}
	if len(v.Slice()) == 0 {
		return nil, fmt.Errorf("%w: empty vector", domain.ErrMalformedVector)
	}
	return v.Slice(), nil
}
