package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/records"
	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driven"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// DatabaseFile is the file name of the knowledge database inside the data directory.
const DatabaseFile = "knowledge.db"

// Store is the SQLite-backed knowledge base.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.KnowledgeBase = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pharmacy-rag/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pharmacy-rag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas are in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ListChunks returns every chunk ordered by source then ordinal.
func (s *Store) ListChunks(ctx context.Context) ([]domain.KnowledgeChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, text, ordinal
		FROM knowledge_chunks
		ORDER BY source, ordinal, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		var r records.Chunk
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Ordinal); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStorageUnavailable, err)
		}
		chunks = append(chunks, r.Domain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrStorageUnavailable, err)
	}

	return chunks, nil
}

// ListEmbeddings returns every decodable embedding.
func (s *Store) ListEmbeddings(ctx context.Context) ([]domain.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, knowledge_chunk_id, vector, created_at
		FROM embeddings
		ORDER BY knowledge_chunk_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying embeddings: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var embeddings []domain.Embedding
	for rows.Next() {
		var (
			r         records.Embedding
			blob      []byte
			createdAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.KnowledgeChunkID, &blob, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning embedding: %v", domain.ErrStorageUnavailable, err)
		}

		vector, err := records.DecodeBlob(blob)
		if err != nil {
			logger.Warn("skipping embedding %s: %v", r.ID, err)
			continue
		}
		r.Vector = vector
		r.CreatedAt = createdAt.Time
		embeddings = append(embeddings, r.Domain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating embeddings: %v", domain.ErrStorageUnavailable, err)
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
		return 0, fmt.Errorf("%w: beginning transaction: %v", domain.ErrStorageUnavailable, err)
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
		return 0, fmt.Errorf("committing %s: %w", source, err)
	}
	return replaced, nil
}

// DeleteBySource removes every chunk of a source. Embeddings go by cascade.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: empty source", domain.ErrInvalidInput)
	}
	return deleteSource(ctx, s.db, source)
}

func insertChunk(ctx context.Context, ex execer, r records.Chunk) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO knowledge_chunks (id, source, text, ordinal)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			text = excluded.text,
			ordinal = excluded.ordinal
	`, r.ID, r.Source, r.Text, r.Ordinal)
	if err != nil {
		return fmt.Errorf("saving chunk %s: %w", r.ID, err)
	}
	return nil
}

func insertEmbedding(ctx context.Context, ex execer, r records.Embedding) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO embeddings (id, knowledge_chunk_id, vector, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(knowledge_chunk_id) DO UPDATE SET
			id = excluded.id,
			vector = excluded.vector,
			dimensions = excluded.dimensions,
			created_at = excluded.created_at
	`, r.ID, r.KnowledgeChunkID, records.EncodeBlob(r.Vector), len(r.Vector), r.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("embedding %s: chunk %s: %w", r.ID, r.KnowledgeChunkID, domain.ErrNotFound)
		}
		return fmt.Errorf("saving embedding %s: %w", r.ID, err)
	}
	return nil
}

func deleteSource(ctx context.Context, ex execer, source string) (int, error) {
	res, err := ex.ExecContext(ctx, "DELETE FROM knowledge_chunks WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("deleting source %s: %w", source, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}
