package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/voxdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeSnapshotStore = (*Store)(nil)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "knowledge.db"

// Store is a SQLite-backed knowledge snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.voxdesk/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".voxdesk", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets an `ask` read while an `ingest --watch` rebuilds.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
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

// SaveSnapshot replaces the stored snapshot in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.KnowledgeSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearTables(ctx, tx); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_chunks (seq, id, document_id, content, position, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range snapshot.Chunks {
		metadataJSON, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Position, metadataJSON); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO knowledge_snapshot (id, built_at, chunk_count) VALUES (1, ?, ?)
	`, snapshot.BuiltAt.UTC().Format(time.RFC3339Nano), len(snapshot.Chunks)); err != nil {
		return fmt.Errorf("saving snapshot header: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or domain.ErrNotFound if no
// build has been saved.
func (s *Store) LoadSnapshot(ctx context.Context) (*domain.KnowledgeSnapshot, error) {
	var builtAt string
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT built_at, chunk_count FROM knowledge_snapshot WHERE id = 1`).Scan(&builtAt, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	snapshot := &domain.KnowledgeSnapshot{Chunks: make([]domain.Chunk, 0, count)}
	if snapshot.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt); err != nil {
		return nil, fmt.Errorf("parsing built_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, metadata
		FROM knowledge_chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		snapshot.Chunks = append(snapshot.Chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return snapshot, nil
}

// ClearSnapshot removes the stored snapshot.
func (s *Store) ClearSnapshot(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_snapshot`); err != nil {
		return fmt.Errorf("clearing snapshot header: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
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
		// "001_knowledge.up.sql" -> 1
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func marshalMetadata(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// scanChunk scans a chunk row. Whole numbers in metadata (page, chunk
// ordinal, status code) come back as int rather than float64.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Position, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(metadataJSON)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
	}
	if len(raw) > 0 {
		chunk.Metadata = make(map[string]any, len(raw))
		for k, v := range raw {
			chunk.Metadata[k] = fromJSONNumber(v)
		}
	}

	return &chunk, nil
}

func fromJSONNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
